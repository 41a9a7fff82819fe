package textutil

import (
	"strings"
	"unicode"
)

// ProjectToken folds name into a lowercase token safe for file names.
// Letters and digits survive, dashes and underscores are kept, and runs of
// anything else collapse into a single underscore. Blank input returns "".
func ProjectToken(name string) string {
	name = strings.TrimSpace(fold(name))
	if name == "" {
		return ""
	}
	var b strings.Builder
	lastSep := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
			lastSep = false
		case !lastSep:
			b.WriteByte('_')
			lastSep = true
		}
	}
	return strings.Trim(b.String(), "_-")
}
