package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mschirtzinger/tcsync/internal/engine"
	"github.com/Mschirtzinger/tcsync/internal/naming"
	"github.com/Mschirtzinger/tcsync/internal/ui"
)

var (
	createDependsOn string
	createTeardown  string
	createID        string
)

var createCmd = &cobra.Command{
	Use:     "create [name] <target>",
	GroupID: "cases",
	Short:   "Create a test case and push it",
	Long: `Create a new test case named <name>, write it to its place in the tree and
push it together with the cases it depends on.

If the name is omitted and stdin is a terminal, it is asked for.

Examples:
  tcs create "User logs in" web --depends-on setUpData.yaml
  tcs create web`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, target := "", args[len(args)-1]
		if len(args) == 2 {
			name = args[0]
		} else {
			var err error
			if name, err = promptName(); err != nil {
				return err
			}
		}

		s, state, err := newSession(true)
		if err != nil {
			return err
		}

		res, err := s.Create(cmd.Context(), name, target, engine.CreateOptions{
			DependencyPath: createDependsOn,
			TeardownPath:   createTeardown,
			ID:             createID,
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Pass("created %s", res.Path))
		fmt.Println(ui.Detail("id %s", res.Case.ID))
		if !res.RemoteFailed {
			fmt.Println(ui.Detail("pushed to %s", res.Endpoint))
		}
		return state.finish()
	},
}

// promptName asks for the case name on an interactive terminal.
func promptName() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("a test case name is required")
	}

	var name string
	err := huh.NewInput().
		Title("Test case name").
		Description("Describes what the case does; it also names the file").
		Placeholder("e.g., User logs in").
		Value(&name).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("name is required")
			}
			if _, err := naming.Identifier(s); err != nil {
				return fmt.Errorf("name must contain letters or digits")
			}
			return nil
		}).
		Run()
	if err != nil {
		return "", err
	}
	return name, nil
}

func init() {
	createCmd.Flags().StringVar(&createDependsOn, "depends-on", "", "Case file the new case depends on")
	createCmd.Flags().StringVar(&createTeardown, "teardown", "", "Case file that cleans up after the new case")
	createCmd.Flags().StringVar(&createID, "id", "", "Use this id instead of a generated one")
	rootCmd.AddCommand(createCmd)
}
