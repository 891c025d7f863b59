package main

import (
	"fmt"
	"os"

	"github.com/mkrepo/mkrepo/pkg/log"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "mkrepo",
	Short: "mkrepo creates a GitHub repository, clones it, scaffolds a project, and pushes your configs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.Init(logLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
