package logging

import (
	"fmt"
	"strings"
)

// Format substitutes args into template by position. Each argument replaces
// the first "{" ... "}" span still present in the text (the braces and
// anything between them), so "{}" and "{name}" behave the same.
//
// Format is tolerant by contract: surplus arguments are dropped and missing
// arguments leave the remaining placeholders untouched.
//
//	Format("{} and {}", "a", "b") // "a and b"
//	Format("{}")                  // "{}"
//	Format("x", "unused")         // "x"
func Format(template string, args ...any) string {
	if len(args) == 0 {
		return template
	}

	var sb strings.Builder
	rest := template
	for _, arg := range args {
		open := strings.Index(rest, "{")
		if open < 0 {
			break
		}
		closing := strings.Index(rest[open:], "}")
		if closing < 0 {
			break
		}
		sb.WriteString(rest[:open])
		sb.WriteString(render(arg))
		// Scanning resumes after the placeholder; rendered text is never
		// treated as a placeholder itself.
		rest = rest[open+closing+1:]
	}
	sb.WriteString(rest)
	return sb.String()
}

// render returns the string form of a single argument. fmt recovers from
// nil receivers and panicking String or Error methods.
func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
