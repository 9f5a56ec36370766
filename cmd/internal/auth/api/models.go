package authapi

import (
	"time"

	"tessera/cmd/internal/auth/session"
)

type createRequest struct {
	// SetCookies overrides Config.CookieTransport for this request.
	SetCookies *bool `json:"set_cookies"`
}

type createResponse struct {
	Session        session.Validated `json:"session"`
	Token          string            `json:"token"`
	Claim          string            `json:"claim"`
	ClaimExpiresAt time.Time         `json:"claim_expires_at"`
}

type currentResponse struct {
	Session        session.Validated `json:"session"`
	Via            session.Source    `json:"via"`
	Claim          string            `json:"claim,omitempty"`
	ClaimExpiresAt *time.Time        `json:"claim_expires_at,omitempty"`
}
