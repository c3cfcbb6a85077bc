package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single VCS command.
const DefaultTimeout = 10 * time.Second

// waitDelay bounds how long a killed command's output pipes are drained.
const waitDelay = time.Second

// ExecContext executes a VCS command with timeout and context support.
// A failure carries the command's trimmed stderr.
//
// Example:
//
//	output, err := ExecContext(ctx, 10*time.Second, repoRoot, "git", "status", "--porcelain")
func ExecContext(ctx context.Context, timeout time.Duration, workDir string, name string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir
	// Children that inherit the pipes (hooks, credential helpers) would
	// otherwise keep Wait blocked after the kill.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, &CommandError{Args: append([]string{name}, args...), Stderr: strings.TrimSpace(stderr.String()), Err: err}
		}
		return nil, &CommandError{Args: append([]string{name}, args...), Err: err}
	}
	return stdout.Bytes(), nil
}

// Exec runs a command with DefaultTimeout and returns trimmed stdout.
func Exec(workDir string, name string, args ...string) (string, error) {
	out, err := ExecContext(context.Background(), DefaultTimeout, workDir, name, args...)
	if err != nil {
		return "", err
	}
	return TrimOutput(out), nil
}

// CommandError is a failed VCS command.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v: %s", strings.Join(e.Args, " "), e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// StderrContains reports whether err is a CommandError whose stderr
// contains substr.
func StderrContains(err error, substr string) bool {
	var ce *CommandError
	return errors.As(err, &ce) && strings.Contains(ce.Stderr, substr)
}

// ParseLines splits command output into non-empty, trimmed lines.
func ParseLines(output []byte) []string {
	if len(output) == 0 {
		return nil
	}

	lines := strings.Split(string(output), "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}

// TrimOutput trims whitespace and trailing newlines from command output.
func TrimOutput(output []byte) string {
	return strings.TrimSpace(string(output))
}

// RepoSlug extracts owner and repository name from a remote URL. It
// understands scp-like ssh URLs (git@host:owner/repo.git) and ssh, http
// and https URLs. Nested groups stay in owner ("group/sub").
func RepoSlug(remoteURL string) (owner, repo string, err error) {
	raw := strings.TrimSpace(remoteURL)
	var path string

	switch {
	case strings.Contains(raw, "://"):
		u, perr := url.Parse(raw)
		if perr != nil || u.Host == "" {
			return "", "", fmt.Errorf("%w: %s", ErrBadRemoteURL, remoteURL)
		}
		path = u.Path
	case strings.Contains(raw, ":") && !strings.HasPrefix(raw, "/"):
		// scp-like: [user@]host:path
		_, path, _ = strings.Cut(raw, ":")
	default:
		return "", "", fmt.Errorf("%w: %s", ErrBadRemoteURL, remoteURL)
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", fmt.Errorf("%w: %s", ErrBadRemoteURL, remoteURL)
	}
	return path[:i], path[i+1:], nil
}
