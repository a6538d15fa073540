package chatlog

import "strings"

// SanitizeFilename maps an arbitrary title to a filesystem-safe name.
// Every rune other than an ASCII letter, digit, space, underscore or hyphen
// becomes a single underscore (runs are not collapsed). The result is then
// trimmed and its spaces are replaced with underscores.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isSafeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '_', r == '-':
		return true
	default:
		return false
	}
}
