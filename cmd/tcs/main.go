// Command tcs keeps a directory of YAML test cases in sync with the
// test case service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/tcsync/internal/config"
	"github.com/Mschirtzinger/tcsync/internal/logging"
	"github.com/Mschirtzinger/tcsync/internal/ui"

	// Register VCS backends
	_ "github.com/Mschirtzinger/tcsync/internal/vcs/git"
	_ "github.com/Mschirtzinger/tcsync/internal/vcs/jj"
)

var (
	configFile string
	verbose    bool
	quiet      bool
)

// commandContext holds what PersistentPreRunE resolved for the running
// command.
type commandContext struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

var cmdCtx = &commandContext{logger: slog.New(slog.DiscardHandler)}

// errRemoteFailed marks a command whose remote call failed after the
// failure was already reported.
var errRemoteFailed = errors.New("remote call failed")

var rootCmd = &cobra.Command{
	Use:   "tcs",
	Short: "tcs - sync test cases between a directory tree and the test case service",
	Long: `tcs mirrors the test cases of a target as one YAML file per case.

Files are laid out by dependency: a case that depends on "Set up data" lives
in the setUpData/ folder. Pull brings the tree in line with the service,
push sends it back, edit and create change single cases.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Options{File: configFile, Flags: cmd.Flags()})
		if err != nil {
			return err
		}
		logger, closer, err := logging.New(os.Stderr, logging.Options{
			LogConfig: cfg.Log,
			Verbose:   verbose,
			Quiet:     quiet,
		})
		if err != nil {
			return err
		}
		cmdCtx.cfg = cfg
		cmdCtx.logger = logger
		cmdCtx.closer = closer
		if cfg.File != "" {
			logger.Debug("loaded config", "file", cfg.File)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cmdCtx.closer != nil {
			_ = cmdCtx.closer.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: <root>/.tcsync.yaml, then ~/.config/tcsync/config.yaml)")
	rootCmd.PersistentFlags().String("root", ".", "Test case tree root")
	rootCmd.PersistentFlags().String("remote-url", "", "Test case service base URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for the test case service")
	rootCmd.PersistentFlags().String("schema-url", "", "Schema reference written at the top of every case file")
	rootCmd.PersistentFlags().Int("retries", 3, "Retries for failed remote calls (0 disables)")
	rootCmd.PersistentFlags().Int("parallelism", 8, "Concurrent file writes")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file, rotated by size")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output (warnings and errors only)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync:"},
		&cobra.Group{ID: "cases", Title: "Working With Cases:"},
		&cobra.Group{ID: "inspect", Title: "Inspection:"},
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRemoteFailed) {
			fmt.Fprintln(os.Stderr, ui.Fail("Error: %v", err))
		}
		stop()
		os.Exit(1)
	}
}
