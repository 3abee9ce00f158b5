package main

import (
	"os"

	"github.com/cottand/tyrel/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "tyrel [subcommand]",
	Short:        "tyrel relates types: subtyping, equality and higher-ranked types",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.RelateCmd)
	rootCmd.AddCommand(cmd.ParseCmd)
}
