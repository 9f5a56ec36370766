package token

import (
	"crypto/rand"
	"io"
)

const (
	// Alphabet is the 32-symbol generation alphabet. It leaves out l, o, 0 and 1.
	// The session token separator "." is deliberately not part of it.
	Alphabet = "abcdefghijkmnpqrstuvwxyz23456789"

	// Length is the number of symbols per generated string (24 * 5 = 120 bits).
	Length = 24

	bitsPerSymbol = 5
	randomBytes   = Length * bitsPerSymbol / 8 // 15
)

// alphabetIndex maps a byte to its alphabet position, or -1.
var alphabetIndex = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		idx[Alphabet[i]] = int8(i) // #nosec G115 -- i < 32.
	}
	return idx
}()

// Generate returns a fresh random identifier drawn from crypto/rand.
func Generate() (string, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom returns an identifier built from exactly 15 bytes of r.
//
// Every bit read is used: the 120 input bits are split into 24 five-bit
// groups and each group indexes Alphabet directly, so each symbol is uniform
// over all 32 entries.
func GenerateFrom(r io.Reader) (string, error) {
	var buf [randomBytes]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return "", ErrShortRead
		}
		return "", err
	}

	out := make([]byte, Length)
	var acc uint32
	var nbits uint
	j := 0
	for _, b := range buf {
		acc = acc<<8 | uint32(b)
		nbits += 8
		for nbits >= bitsPerSymbol {
			nbits -= bitsPerSymbol
			out[j] = Alphabet[(acc>>nbits)&0x1f]
			j++
		}
		acc &= (1 << nbits) - 1
	}

	return string(out), nil
}

// Valid reports whether s has the exact shape of a Generate output.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if alphabetIndex[s[i]] < 0 {
			return false
		}
	}
	return true
}
