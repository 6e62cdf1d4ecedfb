package credentials

import (
	"strings"
	"testing"
)

func TestHashVerify(t *testing.T) {
	h, err := HashSecret("correct horse")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	if !VerifySecret(h, "correct horse") {
		t.Error("valid secret rejected")
	}
	if VerifySecret(h, "wrong horse") {
		t.Error("invalid secret accepted")
	}
}

func TestBoxRoundTrip(t *testing.T) {
	key := strings.Repeat("ab", 32)
	box, err := NewBox(key)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	enc, err := box.Encrypt("invite-7f3")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if enc == "invite-7f3" {
		t.Error("ciphertext equals plaintext")
	}

	plain, err := box.Decrypt(enc)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain != "invite-7f3" {
		t.Errorf("round trip: got %q", plain)
	}
}

func TestBoxRejectsTampering(t *testing.T) {
	box, _ := NewBox(strings.Repeat("cd", 32))
	enc, _ := box.Encrypt("secret")

	tampered := []byte(enc)
	if tampered[len(tampered)-1] == 'f' {
		tampered[len(tampered)-1] = '0'
	} else {
		tampered[len(tampered)-1] = 'f'
	}
	if _, err := box.Decrypt(string(tampered)); err != ErrDecrypt {
		t.Errorf("tampered ciphertext: got %v, want ErrDecrypt", err)
	}

	if _, err := box.Decrypt("zz"); err != ErrDecrypt {
		t.Errorf("garbage input: got %v, want ErrDecrypt", err)
	}
}

func TestNewBoxRejectsBadKey(t *testing.T) {
	if _, err := NewBox("short"); err == nil {
		t.Error("short key accepted")
	}
	if _, err := NewBox("not-hex"); err == nil {
		t.Error("non-hex key accepted")
	}
}
