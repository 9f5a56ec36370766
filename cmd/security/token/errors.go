package token

import "errors"

// Public, stable errors for callers.
var (
	ErrHMACKeyMissing  = errors.New("token HMAC key missing")
	ErrHMACKeyTooShort = errors.New("token HMAC key too short")

	// ErrShortRead is returned when the random source yields fewer bytes than requested.
	ErrShortRead = errors.New("token random source short read")
)
