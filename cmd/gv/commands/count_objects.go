package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countObjectsCmd = &cobra.Command{
	Use:   "count-objects",
	Short: "Count objects in the store, grouped by type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := GV.Store.CountObjects(cmd.Context())
		if err != nil {
			return fmt.Errorf("count-objects failed: %w", err)
		}

		var total, totalBytes int64
		for _, c := range counts {
			fmt.Printf("%-8s %6d objects, %d bytes\n", c.Kind, c.Count, c.Bytes)
			total += c.Count
			totalBytes += c.Bytes
		}
		fmt.Printf("total    %6d objects, %d bytes\n", total, totalBytes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countObjectsCmd)
}
