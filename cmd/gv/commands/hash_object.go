package commands

import (
	"fmt"
	"io"
	"os"

	"gitvault/pkg/object"

	"github.com/spf13/cobra"
)

var (
	hashObjectType  string
	hashObjectWrite bool
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object [file]",
	Short: "Compute object ID and optionally store the object",
	Long: `Compute the content hash of a file (or stdin with "-") and print it.
With -w the object is also written into the object store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 读取内容 ("-" 表示 stdin，方便管道)
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		// 2. 构造对象
		kind, err := object.ParseType(hashObjectType)
		if err != nil {
			return err
		}
		obj, err := object.New(kind, data)
		if err != nil {
			return err
		}

		// 3. 【关键】persist=false 时只算哈希，一个字节都不落盘
		hash, err := GV.Store.Put(cmd.Context(), obj, hashObjectWrite)
		if err != nil {
			return fmt.Errorf("hash-object failed: %w", err)
		}

		fmt.Println(hash)
		return nil
	},
}

func init() {
	hashObjectCmd.Flags().StringVarP(&hashObjectType, "type", "t", "blob", "object type (blob, tree, commit, tag)")
	hashObjectCmd.Flags().BoolVarP(&hashObjectWrite, "write", "w", false, "actually write the object into the store")
	rootCmd.AddCommand(hashObjectCmd)
}
