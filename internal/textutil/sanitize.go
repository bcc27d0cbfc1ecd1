package textutil

import "strings"

// pathReplacer replaces filesystem-unsafe characters with safe alternatives.
var pathReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizePathComponent replaces filesystem-unsafe characters in a folder or
// file name. Slashes, backslashes, colons, and asterisks become dashes; other
// unsafe characters are removed. Leading/trailing whitespace and dots are
// trimmed. Returns "Unknown" for input that sanitizes to nothing.
func SanitizePathComponent(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown"
	}
	out := strings.Trim(pathReplacer.Replace(name), " .")
	if out == "" {
		return "Unknown"
	}
	return out
}
