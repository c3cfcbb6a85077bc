package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/tcsync/internal/engine"
	"github.com/Mschirtzinger/tcsync/internal/reconcile"
	"github.com/Mschirtzinger/tcsync/internal/ui"
)

var (
	pullDest    string
	pullPartial bool
	pullDryRun  bool
)

var pullCmd = &cobra.Command{
	Use:     "pull <target>",
	GroupID: "sync",
	Short:   "Bring the local tree in line with the service",
	Long: `Fetch every test case of a target and reconcile the tree with it.

Cases whose description or dependency changed are moved. Without --partial,
local cases that the service no longer has are deleted and empty folders
are pruned up to the root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, state, err := newSession(true)
		if err != nil {
			return err
		}

		res, err := s.Pull(cmd.Context(), args[0], engine.PullOptions{
			Destination: pullDest,
			Partial:     pullPartial,
			DryRun:      pullDryRun,
		})
		if err != nil {
			return err
		}
		switch {
		case res.Plan != nil:
			printPlan(res.Plan)
		case res.Result != nil:
			fmt.Println(ui.Pass("pulled %s: %d written, %d unchanged, %d deleted, %d folders removed",
				ui.Count(res.Cases, "test case"),
				res.Result.Written, res.Result.Unchanged, res.Result.Deleted, res.Result.RemovedDirs))
		}
		return state.finish()
	},
}

func printPlan(plan *reconcile.Plan) {
	if plan.Empty() {
		fmt.Println(ui.Pass("already up to date"))
		return
	}
	fmt.Println(ui.RenderCategory("plan") + ui.RenderMuted(" ("+plan.Mode.String()+")"))
	for _, r := range plan.Stale {
		fmt.Println(ui.Warn("move %s", r.Path))
	}
	for _, r := range plan.Orphans {
		fmt.Println(ui.Fail("delete %s", r.Path))
	}
	for _, w := range plan.Writes {
		if !w.InPlace {
			fmt.Println(ui.Pass("write %s", w.Path))
		}
	}
}

func init() {
	pullCmd.Flags().StringVar(&pullDest, "dest", "", "Destination directory (default: the root)")
	pullCmd.Flags().BoolVar(&pullPartial, "partial", false, "Keep local cases the service does not have")
	pullCmd.Flags().BoolVar(&pullDryRun, "dry-run", false, "Show the plan without changing files")
	rootCmd.AddCommand(pullCmd)
}
