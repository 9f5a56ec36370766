package token

import "crypto/subtle"

// Equal reports whether a and b hold the same bytes.
//
// Lengths are compared first and may return early; lengths are not secret.
// For equal lengths every byte is visited and differences are folded with
// XOR/OR, so the running time does not depend on where the inputs differ.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := 0; i < len(a); i++ {
		v |= a[i] ^ b[i]
	}
	return subtle.ConstantTimeByteEq(v, 0) == 1
}

// EqualString is Equal for strings.
func EqualString(a, b string) bool {
	return Equal([]byte(a), []byte(b))
}
