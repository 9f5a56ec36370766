package session

import (
	"context"
	"log/slog"
	"time"
)

// Source reports which path authenticated a request.
type Source string

const (
	SourceClaim Source = "claim"
	SourceToken Source = "token"
)

// Credentials are what a client presented. Either field may be empty.
type Credentials struct {
	Claim string
	Token string
}

// Result is a successful authentication.
type Result struct {
	Session Validated
	Source  Source

	// Claim is a freshly minted claim when Source is SourceToken.
	Claim          string
	ClaimExpiresAt time.Time
}

// Authenticator tries the signed claim first and falls back to the
// store-backed token check.
type Authenticator struct {
	svc   *Service
	codec *ClaimCodec
	log   *slog.Logger
}

// NewAuthenticator wires a Service and a ClaimCodec together.
func NewAuthenticator(svc *Service, codec *ClaimCodec) *Authenticator {
	return &Authenticator{svc: svc, codec: codec, log: svc.log}
}

// Service returns the underlying Service.
func (a *Authenticator) Service() *Service { return a.svc }

// Codec returns the underlying ClaimCodec.
func (a *Authenticator) Codec() *ClaimCodec { return a.codec }

// Authenticate resolves cred at now. Results are memoized in the request
// cache when one is installed on ctx.
func (a *Authenticator) Authenticate(ctx context.Context, now time.Time, cred Credentials) (Result, error) {
	cache := RequestCacheFrom(ctx)
	if hit, ok := cache.get(cred); ok {
		return hit.res, hit.err
	}

	res, err := a.authenticate(ctx, now, cred)
	cache.put(cred, res, err)
	return res, err
}

func (a *Authenticator) authenticate(ctx context.Context, now time.Time, cred Credentials) (Result, error) {
	if cred.Claim != "" {
		v, err := a.codec.Verify(cred.Claim, now)
		if err == nil {
			a.svc.metrics.claim("ok")
			return Result{Session: v, Source: SourceClaim}, nil
		}
		a.svc.metrics.claim("rejected")
	}

	if cred.Token == "" {
		return Result{}, ErrUnauthenticated
	}

	sess, err := a.svc.Validate(ctx, now, cred.Token)
	if err != nil {
		return Result{}, err
	}

	res := Result{Session: sess.Public(), Source: SourceToken}
	claim, exp, err := a.codec.Mint(sess, now)
	if err != nil {
		// The token check already succeeded; the client just gets no claim.
		a.log.Error("session.claim.mint_fail", "session_id", sess.ID, "err", err)
		return res, nil
	}
	res.Claim = claim
	res.ClaimExpiresAt = exp
	return res, nil
}
