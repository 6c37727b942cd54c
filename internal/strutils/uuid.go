package strutils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NormalizeUUID parses a UUID in any accepted textual form and returns the
// canonical lowercase dashed representation. Profile, tribe and session IDs
// are stored normalized so they can be compared with plain equality.
func NormalizeUUID(raw string) (string, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid uuid %q: %w", raw, err)
	}
	return parsed.String(), nil
}

func UUIDIsNormalized(id string) bool {
	normalized, err := NormalizeUUID(id)
	if err != nil {
		return false
	}
	return id == normalized && id == strings.ToLower(id)
}
