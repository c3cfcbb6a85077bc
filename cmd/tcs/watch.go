package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/tcsync/internal/scan"
	"github.com/Mschirtzinger/tcsync/internal/ui"
	"github.com/Mschirtzinger/tcsync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:     "watch [dir]",
	GroupID: "inspect",
	Short:   "Revalidate the tree whenever a case file changes",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := newSession(false)
		if err != nil {
			return err
		}
		dir := cmdCtx.cfg.Root
		if len(args) == 1 {
			dir = args[0]
		}

		w, err := watch.New(dir, scan.DefaultSkipDirs, cmdCtx.logger)
		if err != nil {
			return err
		}

		revalidate := func(ctx context.Context, events []watch.Event) {
			for _, e := range events {
				fmt.Println(ui.RenderMuted(fmt.Sprintf("%s %s %s", time.Now().Format("15:04:05"), e.Op, e.Path)))
			}
			report, err := s.Validate(ctx, dir)
			printReport(report, err)
			if err != nil && report == nil {
				fmt.Println(ui.Fail("%v", err))
			}
		}

		revalidate(cmd.Context(), nil)
		return watch.Run(cmd.Context(), w, cmdCtx.cfg.Watch.Debounce, revalidate)
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before revalidating")
	rootCmd.AddCommand(watchCmd)
}
