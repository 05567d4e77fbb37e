package commands

import (
	"fmt"
	"os"

	"gitvault/pkg/types"

	"github.com/spf13/cobra"
)

var (
	catFileShowType bool
	catFileShowSize bool
	catFilePretty   bool
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file [hash|ref]",
	Short: "Show object content, type or size",
	Long: `Retrieve an object by full hash, unique hash prefix, or reference name
(HEAD, a branch, or a refs/... path) and print it to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		// 1. 名字 -> 完整 Hash
		// 先按引用解析 (HEAD / 分支 / refs 路径 / 完整 hash 恒等)，
		// 解析不动就当作短 hash 前缀去展开
		hash, err := GV.Refs.Resolve(name)
		if err != nil {
			prefix := types.HashPrefix(name)
			if !prefix.IsValid() {
				return fmt.Errorf("cannot resolve %q: %w", name, err)
			}
			hash, err = GV.Store.ExpandHash(ctx, prefix)
			if err != nil {
				return err
			}
		}

		// 2. -t / -s 走 Stat：有缓存时不需要解压整个对象
		if catFileShowType || catFileShowSize {
			kind, size, err := GV.Store.Stat(ctx, hash)
			if err != nil {
				return err
			}
			if catFileShowType {
				fmt.Println(kind)
			}
			if catFileShowSize {
				fmt.Println(size)
			}
			return nil
		}

		// 3. 默认 (以及 -p): 输出原始内容
		// 二进制内容可以通过 > file.bin 重定向
		obj, err := GV.Store.Get(ctx, hash)
		if err != nil {
			return fmt.Errorf("cat-file failed: %w", err)
		}
		if _, err := os.Stdout.Write(obj.Data()); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	catFileCmd.Flags().BoolVarP(&catFileShowType, "type", "t", false, "show the object type instead of its content")
	catFileCmd.Flags().BoolVarP(&catFileShowSize, "size", "s", false, "show the object size instead of its content")
	catFileCmd.Flags().BoolVarP(&catFilePretty, "pretty", "p", false, "pretty-print the object content")
	rootCmd.AddCommand(catFileCmd)
}
