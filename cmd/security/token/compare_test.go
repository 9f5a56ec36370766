package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	h := Hasher{}

	secrets := []string{"", "a", "abcdefghijkmnpqrstuvwxyz", "another secret"}
	for _, s := range secrets {
		assert.True(t, Equal(h.DigestString(s), h.DigestString(s)), "digest(%q) must equal itself", s)
	}
	for i := range secrets {
		for j := range secrets {
			if i == j {
				continue
			}
			assert.False(t, Equal(h.DigestString(secrets[i]), h.DigestString(secrets[j])))
		}
	}
}

func TestEqual_LengthMismatch(t *testing.T) {
	assert.False(t, Equal([]byte("abc"), []byte("abcd")))
	assert.False(t, Equal(nil, []byte{0}))
	assert.True(t, Equal(nil, []byte{}))
}

func TestEqual_DifferenceAtAnyPosition(t *testing.T) {
	base := make([]byte, 32)
	for i := range base {
		base[i] = byte(i)
	}
	for pos := 0; pos < len(base); pos++ {
		for bit := 0; bit < 8; bit++ {
			other := append([]byte(nil), base...)
			other[pos] ^= 1 << bit
			if Equal(base, other) {
				t.Fatalf("flip at byte %d bit %d not detected", pos, bit)
			}
		}
	}
}

func TestEqualString(t *testing.T) {
	assert.True(t, EqualString("csrf-abc", "csrf-abc"))
	assert.False(t, EqualString("csrf-abc", "csrf-abd"))
}
