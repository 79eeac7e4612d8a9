package cmd

import (
	"fmt"
	"os"

	"smartbudget/config"
	"smartbudget/logging"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "smartbudget",
	Short: "Personal budgeting API server",
	Long:  "Track expenses against a monthly budget, manage savings goals and export reports.",
	// 不带子命令时直接启动服务
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "external config file (optional)")
	rootCmd.Flags().StringVarP(&flagPort, "port", "p", "", "listen port, e.g. 8080 or :8080")
}

// loadConfig 加载配置并初始化日志，所有子命令共用
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg)
	return cfg, nil
}
