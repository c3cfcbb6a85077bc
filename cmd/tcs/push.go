package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/tcsync/internal/ui"
)

var pushSource string

var pushCmd = &cobra.Command{
	Use:     "push <target>",
	GroupID: "sync",
	Short:   "Send the local tree to the service",
	Long: `Validate every test case under the root and push them in one call.

On the repository's default branch the push replaces the target's cases
(main). On any other branch, or outside version control, it is submitted
as a draft.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, state, err := newSession(true)
		if err != nil {
			return err
		}

		res, err := s.Push(cmd.Context(), pushSource, args[0])
		if err != nil {
			return err
		}
		if res.Skipped > 0 {
			fmt.Println(ui.Warn("%s skipped (run 'tcs validate' for details)", ui.Count(res.Skipped, "file")))
		}
		if !res.RemoteFailed {
			fmt.Println(ui.Pass("pushed %s to %s", ui.Count(res.Cases, "test case"), ui.RenderAccent(res.Endpoint.String())))
		}
		return state.finish()
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushSource, "source", "", "Directory to push (default: the root)")
	rootCmd.AddCommand(pushCmd)
}
