package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"multibyte runes", "日本語のテキスト", 6, "日本語..."},
		{"tiny max", "hello", 3, "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	colored := "\x1b[31mERROR\x1b[0m disk full on /dev/sda1"

	if got := TruncateANSI(colored, 0); got != colored {
		t.Error("width 0 must disable truncation")
	}
	if got := TruncateANSI(colored, 100); got != colored {
		t.Error("short input must be unchanged")
	}

	got := TruncateANSI(colored, 12)
	if w := lipgloss.Width(got); w > 12 {
		t.Errorf("visible width %d exceeds 12: %q", w, got)
	}
	if got[:5] != "\x1b[31m" {
		t.Errorf("expected escape sequence preserved, got %q", got)
	}

	if got := TruncateANSI("abcdef", 2); got != "..." {
		t.Errorf("tiny width = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:                "0 B",
		1023:             "1023 B",
		1024:             "1.0 KiB",
		1536:             "1.5 KiB",
		10 * 1024 * 1024: "10.0 MiB",
		3 << 30:          "3.0 GiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
