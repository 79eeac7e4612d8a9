package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version 由构建时 -ldflags "-X smartbudget/cmd.Version=..." 注入
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "smartbudget %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
