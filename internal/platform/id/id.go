// Package id generates identifiers for matches, requests, and notifications.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a random identifier suitable for entity and request ids.
func New() string {
	return uuid.NewString()
}

// NewPrefixed returns a random identifier with a type prefix, e.g. "match-".
func NewPrefixed(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return New()
	}
	return prefix + "-" + New()
}

// IsValid reports whether the value looks like an identifier this package issued.
func IsValid(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if i := strings.LastIndexByte(value, '-'); i >= 0 && len(value)-i-1 == 12 {
		// Prefixed ids end with the final uuid group; fall through to a full parse
		// of the uuid portion when a known prefix layout is detected.
		if j := strings.IndexByte(value, '-'); j > 0 && len(value) > j+1 {
			if _, err := uuid.Parse(value[j+1:]); err == nil {
				return true
			}
		}
	}
	_, err := uuid.Parse(value)
	return err == nil
}
