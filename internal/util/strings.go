// Package util holds small terminal formatting helpers shared by commands.
package util

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates s to maxLen runes, ending with "..." when cut.
// Use TruncateANSI for styled text.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncateANSI truncates s to maxWidth terminal columns, keeping escape
// sequences intact and counting wide characters as two columns. A
// maxWidth <= 0 disables truncation.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return s
	}
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// FormatBytes renders a byte count with a binary unit, e.g. "1.5 KiB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
