package security

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("HashPassword() returned the plaintext")
	}

	if !CheckPassword(hash, "correct horse") {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Error("CheckPassword() accepted the wrong password")
	}
	if CheckPassword("not-a-hash", "correct horse") {
		t.Error("CheckPassword() accepted a malformed hash")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 100))
	if err == nil {
		t.Fatal("expected error for password over 72 bytes")
	}
	if !IsPasswordTooLong(err) {
		t.Errorf("IsPasswordTooLong(%v) = false", err)
	}
}

func TestGenerateSessionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateSessionID()
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}
