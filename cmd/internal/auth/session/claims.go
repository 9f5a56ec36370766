package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tessera/cmd/security/token"
)

const maxClaimLen = 2048

// ClaimKeySet holds HMAC keys by key id. New claims are signed with
// ActiveKID; any key in Keys is accepted on verification, which lets a
// deployment rotate keys without invalidating claims minted just before.
type ClaimKeySet struct {
	ActiveKID string
	Keys      map[string][]byte
}

// ClaimCodec mints and verifies signed session claims (HS256 JWTs).
//
// A claim is a bearer assertion that a session was valid at mint time.
// It is never checked against the store, so a revoked or idle-expired
// session keeps passing claim verification until the claim itself
// expires. Callers that cannot tolerate that window must use
// Service.Validate instead.
type ClaimCodec struct {
	keys ClaimKeySet
	ttl  time.Duration
}

type sessionClaim struct {
	ID        string `json:"id"`
	CreatedAt *int64 `json:"created_at"`
}

type claimPayload struct {
	Session *sessionClaim `json:"session"`
	jwt.RegisteredClaims
}

// NewClaimCodec builds a codec. The active key must be present in keys.
func NewClaimCodec(keys ClaimKeySet, ttl time.Duration) (*ClaimCodec, error) {
	if ttl <= 0 || keys.ActiveKID == "" {
		return nil, ErrConfig
	}
	active, ok := keys.Keys[keys.ActiveKID]
	if !ok || len(active) < minClaimKeyBytes {
		return nil, ErrConfig
	}

	copied := make(map[string][]byte, len(keys.Keys))
	for kid, k := range keys.Keys {
		if len(k) < minClaimKeyBytes {
			return nil, ErrConfig
		}
		copied[kid] = append([]byte(nil), k...)
	}
	return &ClaimCodec{keys: ClaimKeySet{ActiveKID: keys.ActiveKID, Keys: copied}, ttl: ttl}, nil
}

// TTL returns the claim lifetime.
func (c *ClaimCodec) TTL() time.Duration { return c.ttl }

// Mint signs a claim for s. The returned time is the claim expiry.
func (c *ClaimCodec) Mint(s Session, now time.Time) (string, time.Time, error) {
	now = now.UTC().Truncate(time.Second)
	exp := now.Add(c.ttl)
	created := s.CreatedAt.Unix()

	payload := claimPayload{
		Session: &sessionClaim{ID: s.ID, CreatedAt: &created},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tok.Header["kid"] = c.keys.ActiveKID

	signed, err := tok.SignedString(c.keys.Keys[c.keys.ActiveKID])
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks a claim's signature and expiry at now. Every failure,
// whatever the cause, is reported as ErrUnauthenticated. A claim is valid
// through the second named by its exp and rejected after it.
func (c *ClaimCodec) Verify(claim string, now time.Time) (Validated, error) {
	if claim == "" || len(claim) > maxClaimLen {
		return Validated{}, ErrUnauthenticated
	}

	now = now.Truncate(time.Second)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		// exp has second resolution; one second of leeway makes it inclusive.
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(func() time.Time { return now }),
		// Unused trailing bits of a segment must be zero, so every edit to
		// the signature text changes the decoded MAC.
		jwt.WithStrictDecoding(),
	)

	var payload claimPayload
	_, err := parser.ParseWithClaims(claim, &payload, c.keyFor)
	if err != nil {
		return Validated{}, ErrUnauthenticated
	}

	if payload.Session == nil || payload.Session.CreatedAt == nil || *payload.Session.CreatedAt < 0 {
		return Validated{}, ErrUnauthenticated
	}
	if !token.Valid(payload.Session.ID) {
		return Validated{}, ErrUnauthenticated
	}

	return Validated{
		ID:        payload.Session.ID,
		CreatedAt: fromUnix(*payload.Session.CreatedAt),
	}, nil
}

var errClaimHeader = errors.New("claim header rejected")

func (c *ClaimCodec) keyFor(t *jwt.Token) (any, error) {
	if typ, present := t.Header["typ"]; present {
		if s, ok := typ.(string); !ok || s != "JWT" {
			return nil, errClaimHeader
		}
	}

	kid := c.keys.ActiveKID
	if raw, present := t.Header["kid"]; present {
		s, ok := raw.(string)
		if !ok {
			return nil, errClaimHeader
		}
		kid = s
	}

	key, ok := c.keys.Keys[kid]
	if !ok {
		return nil, errClaimHeader
	}
	return key, nil
}
