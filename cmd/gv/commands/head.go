package commands

import (
	"errors"
	"fmt"

	"gitvault/pkg/refs"

	"github.com/spf13/cobra"
)

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Show the hash HEAD currently points at",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := GV.Refs.Head()
		if errors.Is(err, refs.ErrNoHead) {
			// 新仓库：分支还没出生
			fmt.Println("HEAD points at an unborn branch")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(headCmd)
}
