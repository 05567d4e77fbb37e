package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Verify the integrity of every object in the store",
	Long: `Walk the whole object store, decompress and re-hash each object,
and report anything that does not check out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := GV.Store.Verify(cmd.Context())
		if err != nil {
			return fmt.Errorf("fsck aborted: %w", err)
		}

		fmt.Printf("Checked %d objects\n", report.Checked)
		if len(report.Issues) == 0 {
			fmt.Println("✅ No problems found")
			return nil
		}

		for _, issue := range report.Issues {
			fmt.Printf("❌ %s: %v\n", issue.Hash, issue.Err)
		}
		return fmt.Errorf("found %d corrupt objects", len(report.Issues))
	},
}

func init() {
	rootCmd.AddCommand(fsckCmd)
}
