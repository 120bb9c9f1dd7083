package helpers

import (
	"strconv"
	"testing"
)

func TestGenOTPCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenOTPCode()
		if err != nil {
			t.Fatalf("GenOTPCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("len(%q) = %d, want 6", code, len(code))
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d outside 6-digit range", n)
		}
	}
}

func TestGenResetToken(t *testing.T) {
	a, err := GenResetToken(32)
	if err != nil {
		t.Fatalf("GenResetToken: %v", err)
	}
	b, err := GenResetToken(32)
	if err != nil {
		t.Fatalf("GenResetToken: %v", err)
	}
	if a == b {
		t.Fatal("two tokens are identical")
	}
	if a == "" {
		t.Fatal("empty token")
	}
}

func TestHashResetTokenIsStable(t *testing.T) {
	tok := "some-token"
	if HashResetToken(tok) != HashResetToken(tok) {
		t.Fatal("hash not deterministic")
	}
	if HashResetToken(tok) == HashResetToken("other-token") {
		t.Fatal("distinct tokens hash equal")
	}
	if len(HashResetToken(tok)) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(HashResetToken(tok)))
	}
}
