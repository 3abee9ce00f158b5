package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/internal/log"
	"github.com/kr/pretty"
	"github.com/logrusorgru/aurora/v4"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var logger = log.DefaultLogger.With("section", "cli")

var RelateCmd = &cobra.Command{
	Use:          "relate scenario.yaml...",
	Short:        "Relate the pairs of types of scenario files",
	RunE:         runRelate,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	logLevel    *int
	logSections *[]string
	verbose     *bool
	color       *bool
)

func init() {
	logLevel = RelateCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
	logSections = RelateCmd.Flags().StringSlice("log-section", nil, "only log the given sections (relate, infer, higher-ranked, generalize, cli)")
	verbose = RelateCmd.Flags().BoolP("verbose", "v", false, "dump every result")
	color = RelateCmd.Flags().Bool("color", false, "colorize the status of every case")
}

func runRelate(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))
	if len(*logSections) > 0 {
		log.EnableSections(*logSections...)
	}

	out := cmd.OutOrStdout()
	au := aurora.New(aurora.WithColors(*color))
	failed, total := 0, 0
	var relateErrs *relerr.Errors
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "could not open scenario %s", path)
		}
		scenario, err := LoadScenario(f)
		_ = f.Close()
		if err != nil {
			return errors.Wrapf(err, "could not load scenario %s", path)
		}

		fileFailed, fileErrs, err := relateScenario(out, au, path, scenario)
		if err != nil {
			return err
		}
		failed += fileFailed
		relateErrs = relateErrs.Merge(fileErrs)
		total += len(scenario.Cases)
	}

	if relateErrs.HasError() {
		_, _ = fmt.Fprintf(out, "relation errors: %s\n", countByCode(relateErrs))
	}
	if failed > 0 {
		return errors.Errorf("%d of %d cases did not match their expectation", failed, total)
	}
	_, _ = fmt.Fprintf(out, "all %d cases matched their expectation\n", total)
	return nil
}

func relateScenario(out io.Writer, au *aurora.Aurora, path string, scenario *Scenario) (int, *relerr.Errors, error) {
	scope, err := scenario.Scope()
	if err != nil {
		return 0, nil, errors.Wrapf(err, "scenario %s", path)
	}

	var relateErrs *relerr.Errors
	failed := 0
	for _, c := range scenario.Cases {
		res, err := scenario.Run(scope, c)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "scenario %s", path)
		}
		var relErr relerr.RelateError
		if errors.As(res.Err, &relErr) {
			relateErrs = relateErrs.With(relErr)
		} else if res.Err != nil {
			return 0, nil, errors.Wrapf(res.Err, "scenario %s: case %s", path, c.Name)
		}
		if !res.Matches() {
			failed++
		}
		printResult(out, au, res)
	}
	logger.Debug("relation errors", "scenario", path, "errors", relateErrs)
	return failed, relateErrs, nil
}

// countByCode renders how many errors of each code errs holds, ordered by code
func countByCode(errs *relerr.Errors) string {
	counts := lo.CountValuesBy(errs.Errors(), relerr.RelateError.Code)
	codes := lo.Keys(counts)
	slices.Sort(codes)
	return strings.Join(lo.Map(codes, func(code relerr.ErrCode, _ int) string {
		return fmt.Sprintf("%s=%d", code, counts[code])
	}), " ")
}

func printResult(out io.Writer, au *aurora.Aurora, res CaseResult) {
	status := au.Green("ok")
	if !res.Matches() {
		status = au.Colorize("MISMATCH", aurora.RedFg|aurora.BrightFg|aurora.BoldFm)
	}
	_, _ = fmt.Fprintf(out, "%s: %s\n", res.Case.Name, status)
	_, _ = fmt.Fprintf(out, "  a = %s\n  b = %s\n", res.A, res.B)

	var relErr relerr.RelateError
	if errors.As(res.Err, &relErr) {
		_, _ = fmt.Fprintf(out, "  error: %s\n", relerr.FormatWithCode(relErr))
	}
	for _, o := range res.Obligations {
		_, _ = fmt.Fprintf(out, "  obligation: %s (from %s)\n", o.Predicate, o.Cause.Desc)
	}
	for _, c := range res.Constraints {
		_, _ = fmt.Fprintf(out, "  constraint: %s\n", c)
	}
	for _, h := range res.HiddenTypes {
		_, _ = fmt.Fprintf(out, "  hidden type: %s := %s\n", h.Key, h.Ty)
	}
	if res.Tainted {
		_, _ = fmt.Fprintln(out, "  tainted by errors")
	}
	if *verbose {
		_, _ = pretty.Fprintf(out, "%# v\n", res)
	}
}
