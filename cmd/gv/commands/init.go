package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"gitvault/pkg/repo"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a gitvault repository",
	Long:  `Create an empty gitvault repository or reinitialize an existing one.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 确定工作目录 (默认当前目录)
		worktree := "."
		if len(args) == 1 {
			worktree = args[0]
		}

		// 2. 创建 .gv 骨架
		gvDir, err := repo.Init(worktree, initForce)
		if errors.Is(err, repo.ErrAlreadyExists) {
			fmt.Printf("⚠️  gitvault repository already exists in %s (use --force to reinitialize)\n", filepath.Join(worktree, repo.DirName))
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("✅ Initialized empty gitvault repository in %s\n", gvDir)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "reinitialize an existing repository")
	rootCmd.AddCommand(initCmd)
}
