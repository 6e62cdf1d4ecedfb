package keygen

import (
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Second)
	s, err := New("avatar")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	if k.Context != "avatar" {
		t.Errorf("context %q", k.Context)
	}
	if k.IssuedAt.Before(before) || k.IssuedAt.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("issued at %v out of range", k.IssuedAt)
	}
}

func TestEmptyContext(t *testing.T) {
	s, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if k.Context != "" {
		t.Errorf("context %q, want empty", k.Context)
	}
}

func TestUnique(t *testing.T) {
	a, _ := New("x")
	b, _ := New("x")
	if a == b {
		t.Error("two keys with the same context must differ")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "abc", "1.2", "notanumber.00.00", "1700000000.zz.00"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) accepted malformed key", s)
		}
	}
}

func TestRejectsNonASCIIContext(t *testing.T) {
	if _, err := New("café"); err == nil {
		t.Error("non-ASCII context must be rejected")
	}
}
