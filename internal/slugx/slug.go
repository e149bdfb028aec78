// Package slugx normalizes human-chosen names into url-safe slugs used as
// uniqueness keys.
package slugx

import "strings"

// Make lowercases and trims name, collapses runs of whitespace into single
// hyphens, and strips every character outside [a-z0-9-]. Two names that
// differ only in case, surrounding whitespace, or punctuation yield the
// same slug.
func Make(name string) string {
	out := make([]rune, 0, len(name))
	pendingHyphen := false
	for _, ch := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9':
			if pendingHyphen && len(out) > 0 {
				out = append(out, '-')
			}
			pendingHyphen = false
			out = append(out, ch)
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '-' || ch == '_':
			pendingHyphen = true
		}
	}
	return string(out)
}
