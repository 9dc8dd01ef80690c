// slug.go derives URL-safe slugs from organization names.
package orgs

import "strings"

// Slugify lowercases a name and reduces it to hyphen-separated
// alphanumeric runs. "Acme, Inc." becomes "acme-inc".
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
