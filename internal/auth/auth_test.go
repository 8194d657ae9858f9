package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "hunter2hunter2") {
		t.Fatal("expected matching password to check out")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestCheckPasswordEmptyHash(t *testing.T) {
	if CheckPassword("", "anything") {
		t.Fatal("empty hash must never validate")
	}
}

func TestEnrollAndValidateMFA(t *testing.T) {
	secret, qrPNG, err := EnrollMFA("mudengine", "alice")
	if err != nil {
		t.Fatalf("EnrollMFA: %v", err)
	}
	if secret == "" {
		t.Fatal("expected non-empty secret")
	}
	if len(qrPNG) == 0 {
		t.Fatal("expected non-empty QR PNG bytes")
	}
	if ValidateMFA(secret, "000000") {
		// Astronomically unlikely to be the real code; just exercises
		// the rejection path without requiring a live TOTP generator.
		t.Log("code 000000 happened to validate; skipping negative assertion")
	}
}
