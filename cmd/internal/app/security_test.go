package app

import (
	"strings"
	"testing"
)

func TestNewTokenHasher(t *testing.T) {
	t.Run("optional and absent", func(t *testing.T) {
		t.Setenv("TESSERA_TOKEN_HMAC_KEY", "")
		h, err := NewTokenHasher(Config{})
		if err != nil || h.Keyed() {
			t.Fatalf("expected plain hasher, got keyed=%v err=%v", h.Keyed(), err)
		}
	})

	t.Run("required and missing", func(t *testing.T) {
		t.Setenv("TESSERA_TOKEN_HMAC_KEY", "")
		if _, err := NewTokenHasher(Config{RequireTokenHMAC: true}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("required and short", func(t *testing.T) {
		t.Setenv("TESSERA_TOKEN_HMAC_KEY", "short")
		if _, err := NewTokenHasher(Config{RequireTokenHMAC: true}); err == nil || !strings.Contains(err.Error(), "too short") {
			t.Fatalf("expected too-short error, got %v", err)
		}
	})

	t.Run("required and present", func(t *testing.T) {
		t.Setenv("TESSERA_TOKEN_HMAC_KEY", strings.Repeat("k", 32))
		h, err := NewTokenHasher(Config{RequireTokenHMAC: true})
		if err != nil || !h.Keyed() {
			t.Fatalf("expected keyed hasher, got keyed=%v err=%v", h.Keyed(), err)
		}
	})
}
