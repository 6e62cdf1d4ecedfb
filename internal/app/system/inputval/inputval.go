// internal/app/system/inputval/inputval.go
//
// Package inputval normalizes and validates request input before it
// reaches the stores: identifier parsing, required-field checks, and
// sanitizing of free-text fields.
package inputval

import (
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/taskhub/taskhub/internal/app/system/compose"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// strict strips all markup; names and descriptions are plain text.
var strict = bluemonday.StrictPolicy()

// ParseID decodes a hex ObjectID. A malformed identifier is the one input
// failure that is a validation error rather than a not-found.
func ParseID(hexID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hexID))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: bad id %q", lifecycle.ErrValidation, hexID)
	}
	return id, nil
}

// ParseIDs decodes a list of hex ObjectIDs, failing on the first bad one.
func ParseIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := ParseID(h)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// ParseOptionalID decodes an optional reference; empty input yields nil.
func ParseOptionalID(hexID string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(hexID) == "" {
		return nil, nil
	}
	id, err := ParseID(hexID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseDate decodes an optional "YYYY-MM-DD" field; empty input yields
// nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(compose.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", lifecycle.ErrValidation, s)
	}
	t = t.UTC()
	return &t, nil
}

// CleanText sanitizes a free-text field and collapses surrounding space.
func CleanText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// RequireName sanitizes a name and rejects an empty result.
func RequireName(s string) (string, error) {
	name := CleanText(s)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", lifecycle.ErrValidation)
	}
	return name, nil
}
