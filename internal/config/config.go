// Package config loads tcs settings from defaults, an optional YAML file,
// TCSYNC_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileName is the per-tree config file looked up in the root.
	FileName = ".tcsync.yaml"

	// EnvPrefix prefixes environment overrides: remote.url is TCSYNC_REMOTE_URL.
	EnvPrefix = "TCSYNC"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration for one invocation.
type Config struct {
	Root      string
	SchemaURL string

	Remote RemoteConfig
	VCS    VCSConfig
	Write  WriteConfig
	Log    LogConfig
	Watch  WatchConfig

	// File is the config file that was read, empty if none.
	File string
}

type RemoteConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
	Retries int
}

type VCSConfig struct {
	// DefaultBranch overrides the detected default ref when set.
	DefaultBranch string
}

type WriteConfig struct {
	Parallelism int
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type WatchConfig struct {
	Debounce time.Duration
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string

	// Flags are bound by name: a flag named "remote-url" overrides
	// remote.url. Unknown flags are ignored.
	Flags *pflag.FlagSet
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"root":        "root",
	"remote-url":  "remote.url",
	"token":       "remote.token",
	"retries":     "remote.retries",
	"parallelism": "write.parallelism",
	"log-level":   "log.level",
	"log-file":    "log.file",
	"schema-url":  "schema_url",
	"debounce":    "watch.debounce",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("schema_url", "")
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.timeout", 30*time.Second)
	v.SetDefault("remote.retries", 3)
	v.SetDefault("vcs.default_branch", "")
	v.SetDefault("write.parallelism", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("watch.debounce", 250*time.Millisecond)
}

// Load resolves the configuration. Without an explicit file it reads
// <root>/.tcsync.yaml, else $XDG_CONFIG_HOME/tcsync/config.yaml, else
// nothing.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	file := opts.File
	if file == "" {
		file = findFile(v.GetString("root"))
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		Root:      v.GetString("root"),
		SchemaURL: v.GetString("schema_url"),
		Remote: RemoteConfig{
			URL:     v.GetString("remote.url"),
			Token:   v.GetString("remote.token"),
			Timeout: v.GetDuration("remote.timeout"),
			Retries: v.GetInt("remote.retries"),
		},
		VCS:   VCSConfig{DefaultBranch: v.GetString("vcs.default_branch")},
		Write: WriteConfig{Parallelism: v.GetInt("write.parallelism")},
		Log: LogConfig{
			Level:      strings.ToLower(v.GetString("log.level")),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		Watch: WatchConfig{Debounce: v.GetDuration("watch.debounce")},
		File:  file,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile(root string) string {
	candidates := []string{filepath.Join(root, FileName)}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "tcsync", "config.yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Root == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	if c.Remote.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("remote.timeout must be positive, got %v", c.Remote.Timeout))
	}
	if c.Remote.Retries < 0 {
		errs = append(errs, fmt.Errorf("remote.retries must not be negative, got %d", c.Remote.Retries))
	}
	if c.Write.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("write.parallelism must be at least 1, got %d", c.Write.Parallelism))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %v", c.Watch.Debounce))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is invalid (valid values: debug, info, warn, error)", c.Log.Level))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// RequireRemote reports an error when no remote URL is configured.
func (c *Config) RequireRemote() error {
	if c.Remote.URL == "" {
		return fmt.Errorf("%w: remote.url is not set (use --remote-url, %s_REMOTE_URL or %s)", ErrInvalid, EnvPrefix, FileName)
	}
	return nil
}
