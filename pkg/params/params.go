// Package params parses optional request parameters.
package params

import (
	"strings"

	"github.com/google/uuid"
)

// OptionalUUID parses raw as a UUID; an empty string yields nil.
func OptionalUUID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
