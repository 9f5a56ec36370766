package password

import (
	"errors"
	"testing"
)

func TestDeriveKey_RFC7914Vector(t *testing.T) {
	// RFC 7914 section 12: P="password", S="NaCl", N=1024, r=8, p=16, dkLen=64.
	const want = "fdbabe1c9d3472007856e7190d01e9fe7c6ad7cbc8237830e77376634b373162" +
		"2eaf30d92e22a3886ff109279d9830dac727afb94a83ee6d8360cbdfa2cc0640"

	got, err := DeriveKey("password", "NaCl", ScryptCost{LogN: 10, R: 8, P: 16, KeyLen: 64})
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if got != want {
		t.Fatalf("DeriveKey mismatch:\n got=%s\nwant=%s", got, want)
	}
}

func TestDeriveKey_NormalizesUnicode(t *testing.T) {
	cost := ScryptCost{LogN: 10, R: 8, P: 1, KeyLen: 32}

	composed, err := DeriveKey("caf\u00e9 au lait", "salt1234", cost)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	decomposed, err := DeriveKey("cafe\u0301 au lait", "salt1234", cost)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if composed != decomposed {
		t.Fatalf("expected NFC-equivalent passwords to derive the same key")
	}
}

func TestDeriveKey_SaltAndCostMatter(t *testing.T) {
	cost := ScryptCost{LogN: 10, R: 8, P: 1, KeyLen: 32}

	a, _ := DeriveKey("correct horse", "salt-a00", cost)
	b, _ := DeriveKey("correct horse", "salt-b00", cost)
	if a == b {
		t.Fatalf("different salts must derive different keys")
	}

	cost.LogN = 11
	c, _ := DeriveKey("correct horse", "salt-a00", cost)
	if a == c {
		t.Fatalf("different cost must derive different keys")
	}
	if len(a) != 64 {
		t.Fatalf("expected 32-byte key hex-encoded, got %d chars", len(a))
	}
}

func TestDeriveKey_InvalidInput(t *testing.T) {
	if _, err := DeriveKey("pw", "", DefaultScryptCost()); !errors.Is(err, ErrInvalidSalt) {
		t.Fatalf("expected ErrInvalidSalt, got %v", err)
	}
	for _, c := range []ScryptCost{
		{LogN: 4, R: 8, P: 1, KeyLen: 64},
		{LogN: 14, R: 0, P: 1, KeyLen: 64},
		{LogN: 14, R: 8, P: 0, KeyLen: 64},
		{LogN: 14, R: 8, P: 1, KeyLen: 8},
	} {
		if _, err := DeriveKey("pw", "salt", c); !errors.Is(err, ErrInvalidCost) {
			t.Fatalf("cost %+v: expected ErrInvalidCost, got %v", c, err)
		}
	}
}

func TestNewSalt(t *testing.T) {
	a, err := NewSalt(16)
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	b, _ := NewSalt(16)
	if len(a) != 32 || a == b {
		t.Fatalf("unexpected salts %q %q", a, b)
	}
	if _, err := NewSalt(2); !errors.Is(err, ErrInvalidSalt) {
		t.Fatalf("expected ErrInvalidSalt, got %v", err)
	}
}

func TestConfigDerive_AppliesPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scrypt = ScryptCost{LogN: 10, R: 8, P: 1, KeyLen: 32}

	if _, err := cfg.Derive("short", "salt1234"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, err := cfg.Derive("a long enough passphrase", "salt1234"); err != nil {
		t.Fatalf("Derive: %v", err)
	}
}
