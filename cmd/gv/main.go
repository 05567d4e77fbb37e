package main

import (
	"log"

	"gitvault/cmd/gv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
