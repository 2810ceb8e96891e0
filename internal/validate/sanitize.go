package validate

import (
	"strings"
	"unicode"
)

// maxFilenameLen bounds SafeFilename output.
const maxFilenameLen = 200

// SanitizeName trims a display name and drops control characters.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
}

// SanitizeCode trims a code and upper-cases it.
func SanitizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// StripControlChars removes control characters other than newline and tab.
func StripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// filenameReplacer maps characters that are unsafe in file names on common
// filesystems.
var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	"\x00", "",
)

// SafeFilename converts a structure name or ID into a file name.
func SafeFilename(s string) string {
	s = strings.Trim(filenameReplacer.Replace(s), " ._")
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	return s
}
