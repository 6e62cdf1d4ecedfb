// internal/app/system/keygen/keygen.go
//
// Package keygen produces the composite string identifiers used for
// tokens and storage file names: a UTC timestamp, an optional hex-encoded
// ASCII context, and random bytes, joined with dots. The timestamp and
// context survive a round trip through Parse; the random tail only
// guarantees uniqueness.
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const randomLen = 8 // bytes of entropy in the tail

var ErrMalformed = errors.New("malformed key")

// Key is a decoded composite identifier.
type Key struct {
	IssuedAt time.Time
	Context  string
}

// New encodes now + context + random bytes. Context may be empty; it must
// be ASCII so the hex segment round-trips.
func New(context string) (string, error) {
	for i := 0; i < len(context); i++ {
		if context[i] > 127 {
			return "", fmt.Errorf("context must be ASCII: %q", context)
		}
	}
	tail := make([]byte, randomLen)
	if _, err := rand.Read(tail); err != nil {
		return "", err
	}
	parts := []string{
		strconv.FormatInt(time.Now().UTC().Unix(), 10),
		hex.EncodeToString([]byte(context)),
		hex.EncodeToString(tail),
	}
	return strings.Join(parts, "."), nil
}

// Parse decodes the timestamp and context segments of a key produced by
// New.
func Parse(s string) (Key, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Key{}, ErrMalformed
	}
	secs, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Key{}, ErrMalformed
	}
	ctx, err := hex.DecodeString(parts[1])
	if err != nil {
		return Key{}, ErrMalformed
	}
	if _, err := hex.DecodeString(parts[2]); err != nil {
		return Key{}, ErrMalformed
	}
	return Key{IssuedAt: time.Unix(secs, 0).UTC(), Context: string(ctx)}, nil
}
