package presets

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// invisible runes that survive copy/paste from chat tools and docs
var invisible = map[rune]bool{'\u200B': true, '\u200C': true, '\u200D': true, '\uFEFF': true}

// ValidateName reports whether name can be stored as a preset name. It does
// not modify name; call CleanName first to strip pasted junk.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("invalid preset name: name cannot be empty")
	case !utf8.ValidString(trimmed):
		return fmt.Errorf("invalid preset name: contains invalid encoding")
	}
	if i := strings.IndexFunc(trimmed, unicode.IsControl); i >= 0 {
		r, _ := utf8.DecodeRuneInString(trimmed[i:])
		return fmt.Errorf("invalid preset name: contains control character U+%04X", r)
	}
	if strings.ContainsRune(trimmed, '/') {
		return fmt.Errorf("invalid preset name: %q must not contain '/'", trimmed)
	}
	return nil
}

// CleanName drops control and zero-width runes and surrounding spaces. The
// bool reports whether anything changed.
func CleanName(name string) (string, bool) {
	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || invisible[r] {
			return -1
		}
		return r
	}, name))
	return cleaned, cleaned != name
}
