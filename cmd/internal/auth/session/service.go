package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tessera/cmd/security/token"
)

// Service implements session creation, validation and revocation.
//
// All methods take the current time explicitly so policy decisions are
// deterministic under test.
type Service struct {
	cfg     Config
	store   Store
	hasher  token.Hasher
	log     *slog.Logger
	metrics *Metrics
	random  io.Reader
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records counters on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRandom replaces crypto/rand as the token entropy source (tests only).
func WithRandom(r io.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.random = r
		}
	}
}

// NewService constructs a Service. cfg must satisfy Config.Validate's
// policy checks; claim keys are not needed here.
func NewService(cfg Config, store Store, hasher token.Hasher, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("session: nil store")
	}
	if cfg.ActivityCheckInterval <= 0 || cfg.InactivityTimeout <= 0 ||
		cfg.ActivityCheckInterval >= cfg.InactivityTimeout {
		return nil, ErrConfig
	}

	s := &Service{
		cfg:    cfg,
		store:  store,
		hasher: hasher,
		log:    slog.New(slog.DiscardHandler),
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create issues a new session. The returned token is the only place the
// plaintext secret exists.
func (s *Service) Create(ctx context.Context, now time.Time) (Created, error) {
	id, err := token.GenerateFrom(s.random)
	if err != nil {
		return Created{}, fmt.Errorf("session: generate id: %w", err)
	}
	secret, err := token.GenerateFrom(s.random)
	if err != nil {
		return Created{}, fmt.Errorf("session: generate secret: %w", err)
	}

	now = now.UTC().Truncate(time.Second)
	sess := Session{
		ID:             id,
		SecretHash:     s.hasher.DigestString(secret),
		CreatedAt:      now,
		LastVerifiedAt: now,
	}

	if err := s.store.Insert(ctx, recordOf(sess)); err != nil {
		s.metrics.storeError("insert")
		s.log.Error("session.create.store_fail", "err", err)
		return Created{}, &StoreError{Op: "insert", Err: err}
	}

	s.metrics.sessionCreated()
	s.log.Debug("session.create.ok", "session_id", id)

	return Created{Session: sess, Token: JoinToken(id, secret)}, nil
}

// Validate authenticates a session token at now.
//
// Malformed tokens, unknown ids, idle-expired sessions and secret
// mismatches all return ErrUnauthenticated. A store failure returns a
// *StoreError, except that a cancelled or timed-out context returns
// ErrUnauthenticated.
func (s *Service) Validate(ctx context.Context, now time.Time, tok string) (Session, error) {
	id, secret, ok := SplitToken(tok)
	if !ok {
		s.metrics.validation("malformed")
		return Session{}, ErrUnauthenticated
	}
	now = now.UTC().Truncate(time.Second)

	// Digest before the lookup so unknown ids cost the same as known ones.
	digest := s.hasher.DigestString(secret)

	sess, err := s.lookup(ctx, now, id)
	if err != nil {
		return Session{}, err
	}

	if !token.Equal(digest, sess.SecretHash) {
		s.metrics.validation("mismatch")
		return Session{}, ErrUnauthenticated
	}

	if now.Sub(sess.LastVerifiedAt) > s.cfg.ActivityCheckInterval {
		err := s.store.UpdateLastVerifiedAt(ctx, id, now.Unix())
		if errors.Is(err, ErrRecordNotFound) {
			// Deleted between lookup and refresh.
			s.metrics.validation("not_found")
			return Session{}, ErrUnauthenticated
		}
		if err != nil {
			return Session{}, s.failStore("update_last_verified_at", err)
		}
		sess.LastVerifiedAt = now
	}

	s.metrics.validation("ok")
	return sess, nil
}

// lookup loads a session and applies the inactivity policy.
func (s *Service) lookup(ctx context.Context, now time.Time, id string) (Session, error) {
	rec, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		s.metrics.validation("not_found")
		return Session{}, ErrUnauthenticated
	}
	if err != nil {
		return Session{}, s.failStore("get", err)
	}

	sess := rec.session()
	if now.Sub(sess.LastVerifiedAt) > s.cfg.InactivityTimeout {
		if err := s.store.Delete(ctx, id); err != nil {
			s.metrics.storeError("delete")
			s.log.Warn("session.validate.expire_delete_fail", "session_id", id, "err", err)
		}
		s.metrics.validation("expired")
		return Session{}, ErrUnauthenticated
	}
	return sess, nil
}

// Revoke deletes a session by id. Unknown ids are not an error.
func (s *Service) Revoke(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.metrics.storeError("delete")
		s.log.Error("session.revoke.store_fail", "session_id", id, "err", err)
		return &StoreError{Op: "delete", Err: err}
	}
	s.log.Debug("session.revoke.ok", "session_id", id)
	return nil
}

// Invalidate validates tok and then revokes its session, so only the
// holder of the secret can log a session out.
func (s *Service) Invalidate(ctx context.Context, now time.Time, tok string) error {
	sess, err := s.Validate(ctx, now, tok)
	if err != nil {
		return err
	}
	return s.Revoke(ctx, sess.ID)
}

func (s *Service) failStore(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.metrics.validation("canceled")
		return ErrUnauthenticated
	}
	s.metrics.storeError(op)
	s.log.Error("session.validate.store_fail", "op", op, "err", err)
	return &StoreError{Op: op, Err: err}
}
