// Package ui provides terminal styling for tcs output.
// Colors adapt to light and dark terminals; styling is dropped when
// output is not a terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	PassStyle     = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle     = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle     = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconSkip = "-"
)

// TreeLast prefixes a detail line under an item.
const TreeLast = "└─ "

func RenderPass(s string) string   { return PassStyle.Render(s) }
func RenderWarn(s string) string   { return WarnStyle.Render(s) }
func RenderFail(s string) string   { return FailStyle.Render(s) }
func RenderMuted(s string) string  { return MutedStyle.Render(s) }
func RenderAccent(s string) string { return AccentStyle.Render(s) }

// RenderCategory renders a section header in uppercase.
func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}

// Pass formats a success line: "✓ msg".
func Pass(format string, args ...any) string {
	return PassStyle.Render(IconPass) + " " + fmt.Sprintf(format, args...)
}

// Warn formats a warning line: "⚠ msg".
func Warn(format string, args ...any) string {
	return WarnStyle.Render(IconWarn) + " " + fmt.Sprintf(format, args...)
}

// Fail formats a failure line: "✗ msg".
func Fail(format string, args ...any) string {
	return FailStyle.Render(IconFail) + " " + fmt.Sprintf(format, args...)
}

// Skip formats a muted line for something not checked: "- msg".
func Skip(format string, args ...any) string {
	return MutedStyle.Render(IconSkip + " " + fmt.Sprintf(format, args...))
}

// Detail formats an indented, muted detail line beneath an item.
func Detail(format string, args ...any) string {
	return "  " + MutedStyle.Render(TreeLast+fmt.Sprintf(format, args...))
}

// Count renders "n noun" with a naive plural.
func Count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
