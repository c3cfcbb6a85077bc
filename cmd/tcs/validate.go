package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/tcsync/internal/engine"
	"github.com/Mschirtzinger/tcsync/internal/graph"
	"github.com/Mschirtzinger/tcsync/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:     "validate [dir]",
	GroupID: "inspect",
	Short:   "Check the test case tree for broken references, duplicate ids and cycles",
	Long: `Scan a directory (default: the root) and validate the dependency graph.

Files that fail to parse are listed and skipped. Missing references,
duplicate ids and dependency cycles fail the command.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := newSession(false)
		if err != nil {
			return err
		}
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}

		report, err := s.Validate(cmd.Context(), dir)
		printReport(report, err)
		return err
	},
}

// printReport writes a validation report to stdout.
func printReport(report *engine.Report, err error) {
	if report == nil {
		return
	}
	for _, sk := range report.Skipped {
		fmt.Println(ui.Warn("skipped %s", sk.Path))
		fmt.Println(ui.Detail("%v", sk.Err))
	}

	var ce *graph.ConsistencyError
	switch {
	case err == nil:
		fmt.Println(ui.Pass("%s valid in %s", ui.Count(report.Cases, "test case"), report.Dir))
	case errors.As(err, &ce):
		fmt.Println(ui.Fail("%s invalid: %s", report.Dir, ce.Kind))
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
