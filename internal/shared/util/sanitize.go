package util

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxLoggedNameRunes = 128

// DisplayFileName reduces a client-supplied upload name to a base name safe
// to log: directories stripped, control characters dropped, length capped.
func DisplayFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	n := 0
	for _, r := range name {
		if unicode.IsControl(r) {
			continue
		}
		if n == maxLoggedNameRunes {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
