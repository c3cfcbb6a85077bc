package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/tcsync/internal/engine"
	"github.com/Mschirtzinger/tcsync/internal/ui"
	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "inspect",
	Short:   "Show configuration, branch context and where a push would go",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cmdCtx.cfg
		s := &engine.Session{Root: cfg.Root, Logger: cmdCtx.logger}

		fmt.Println(ui.RenderCategory("config"))
		fmt.Printf("  Root:     %s\n", cfg.Root)
		fmt.Printf("  Config:   %s\n", orNone(cfg.File))
		fmt.Printf("  Remote:   %s\n", orNone(cfg.Remote.URL))

		fmt.Println(ui.RenderCategory("version control"))
		v := openVCS(cfg.Root)
		if v == nil {
			fmt.Printf("  %s\n", ui.Skip("not in a repository"))
		} else {
			s.VCS = v
			info := vcs.Describe(v)
			fmt.Printf("  Type:     %s\n", info.Type)
			fmt.Printf("  Branch:   %s\n", orNone(info.Ref))
			fmt.Printf("  Default:  %s\n", orNone(info.Default))
			fmt.Printf("  Commit:   %s\n", orNone(info.Commit))
			if info.Owner != "" {
				fmt.Printf("  Repo:     %s/%s\n", info.Owner, info.Repo)
			}
			if info.Dirty {
				fmt.Printf("  %s\n", ui.RenderWarn("uncommitted changes"))
			}
		}
		fmt.Printf("  Push to:  %s\n", ui.RenderAccent(s.Routing().String()))

		fmt.Println(ui.RenderCategory("cases"))
		report, err := s.Validate(cmd.Context(), "")
		printReport(report, err)
		return err
	},
}

func orNone(s string) string {
	if s == "" {
		return ui.RenderMuted("(none)")
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
