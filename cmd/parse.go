package cmd

import (
	"fmt"
	"log/slog"

	"github.com/cottand/tyrel/frontend/ty"
	"github.com/cottand/tyrel/frontend/tysyntax"
	"github.com/cottand/tyrel/internal/log"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

var ParseCmd = &cobra.Command{
	Use:          "parse type...",
	Short:        "Parse types and print them back",
	RunE:         runParse,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	parseParams  *[]string
	parseItems   *[]string
	parseVerbose *bool
)

func init() {
	parseParams = ParseCmd.Flags().StringSliceP("params", "p", nil, "generic parameters in scope, like 'a or T")
	parseItems = ParseCmd.Flags().StringSliceP("adts", "a", nil, "names of the ADTs in scope")
	parseVerbose = ParseCmd.Flags().BoolP("verbose", "v", false, "dump the parsed types")
}

func runParse(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.LevelError)

	scope := tysyntax.NewScope(ty.NewCtxt())
	if err := scope.DeclareParams(*parseParams...); err != nil {
		return err
	}
	for _, name := range *parseItems {
		scope.DeclareItem(name, ty.DefAdt)
	}

	out := cmd.OutOrStdout()
	for _, src := range args {
		t, err := scope.Parse(src)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, t)
		if *parseVerbose {
			_, _ = pretty.Fprintf(out, "%# v\n", t.Kind())
		}
	}
	return nil
}
