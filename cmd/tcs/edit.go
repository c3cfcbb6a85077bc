package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/tcsync/internal/ui"
)

var editCmd = &cobra.Command{
	Use:     "edit <file> <target>",
	GroupID: "cases",
	Short:   "Push one edited case with the cases it depends on",
	Long: `Push a single edited test case file.

The case is validated against the whole tree and pushed together with
every case it reaches through dependencyId and teardownId. If the edit
changed its description or dependency, the file is moved to its new place.
The edit wins over the service copy even when that copy is newer.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, state, err := newSession(true)
		if err != nil {
			return err
		}

		res, err := s.Edit(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if res.RemoteNewer {
			fmt.Println(ui.Warn("the service had a newer version of %s; it was overwritten", res.Relevant[0]))
		}
		if !res.RemoteFailed {
			fmt.Println(ui.Pass("pushed %s to %s", ui.Count(len(res.Relevant), "test case"), ui.RenderAccent(res.Endpoint.String())))
		}
		if res.Path != "" && res.Path != args[0] {
			fmt.Println(ui.Detail("now at %s", res.Path))
		}
		return state.finish()
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
