package session

import (
	"encoding/json"
	"strings"
	"time"

	"tessera/cmd/security/token"
)

// TokenSeparator joins id and secret. It is not in token.Alphabet.
const TokenSeparator = "."

// maxTokenLen rejects pathological input before any work is done.
const maxTokenLen = 2*token.Length + len(TokenSeparator)

// Session is the server-side record. SecretHash never leaves the process:
// marshaling a Session emits only its public projection.
type Session struct {
	ID             string
	SecretHash     []byte
	CreatedAt      time.Time
	LastVerifiedAt time.Time
}

// Public returns the projection that may cross a trust boundary.
func (s Session) Public() Validated {
	return Validated{ID: s.ID, CreatedAt: s.CreatedAt}
}

// MarshalJSON encodes the public projection only.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Public())
}

// Validated is the read-only projection of a session whose authenticity has
// been confirmed. It deliberately carries no secret hash or activity data.
type Validated struct {
	ID        string
	CreatedAt time.Time
}

type publicJSON struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

// MarshalJSON encodes {"id": ..., "created_at": <unix seconds>}.
func (v Validated) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicJSON{ID: v.ID, CreatedAt: v.CreatedAt.Unix()})
}

// UnmarshalJSON decodes the public projection.
func (v *Validated) UnmarshalJSON(b []byte) error {
	var p publicJSON
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	v.ID = p.ID
	v.CreatedAt = time.Unix(p.CreatedAt, 0).UTC()
	return nil
}

// Created is the result of Service.Create. Token is the only copy of the
// secret that will ever exist; hand it to the client and drop it.
type Created struct {
	Session Session
	Token   string
}

// JoinToken builds "<id>.<secret>".
func JoinToken(id, secret string) string {
	return id + TokenSeparator + secret
}

// SplitToken splits a session token into id and secret. It reports false
// unless the token has exactly two parts of generator shape.
func SplitToken(tok string) (id, secret string, ok bool) {
	if len(tok) != maxTokenLen {
		return "", "", false
	}
	parts := strings.Split(tok, TokenSeparator)
	if len(parts) != 2 {
		return "", "", false
	}
	if !token.Valid(parts[0]) || !token.Valid(parts[1]) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func toUnix(t time.Time) int64 { return t.Unix() }

func fromUnix(s int64) time.Time { return time.Unix(s, 0).UTC() }
