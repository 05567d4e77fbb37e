package commands

import (
	"fmt"
	"os"

	"gitvault/pkg/app"
	"gitvault/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	GV *app.App
)

var rootCmd = &cobra.Command{
	Use:   "gv",
	Short: "gitvault: a content-addressable object store",
	// 【关键】PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 跳过 init 命令的依赖检查 (因为它就是去创建环境的)
		if cmd.Name() == "init" {
			return nil
		}

		// 统一初始化 App
		var err error
		GV, err = app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize gitvault: %w\n(Did you run 'gv init'?)", err)
		}
		return nil
	},
	// 错误信息自己打印一次就够了
	SilenceUsage: true,
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <repo>/.gv/config)")

	// 2. 定义 storage.path 参数，并绑定到 Viper
	// 这样用户既可以在配置里写，也可以用 --storage-path 覆盖
	rootCmd.PersistentFlags().String("storage-path", "", "repository directory holding the object store")
	if err := viper.BindPFlag("storage.path", rootCmd.PersistentFlags().Lookup("storage-path")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
