package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tessera/cmd/internal/auth/session"
)

// Handler wires HTTP session endpoints to the session Authenticator.
type Handler struct {
	log  *slog.Logger
	cfg  Config
	auth *session.Authenticator
	now  func() time.Time
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if h == nil || now == nil {
			return
		}
		h.now = now
	}
}

// NewHandler constructs a session API Handler.
func NewHandler(log *slog.Logger, cfg Config, auth *session.Authenticator, opts ...HandlerOption) (*Handler, error) {
	if auth == nil {
		return nil, errors.New("authapi: nil authenticator")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	h := &Handler{
		log:  log,
		cfg:  cfg,
		auth: auth,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires session routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/v1/sessions", h.handleCreate)
	mux.HandleFunc("/v1/sessions/current", h.handleCurrent)
}

// ---- handlers ----

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req createRequest
	if err := decodeOptionalJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	ctx := r.Context()
	now := h.now().UTC()

	created, err := h.auth.Service().Create(ctx, now)
	if err != nil {
		h.writeSessionError(w, "create", err)
		return
	}

	claim, exp, err := h.auth.Codec().Mint(created.Session, now)
	if err != nil {
		h.log.Error("auth.create.mint_claim.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	setCookies := h.cfg.CookieTransport
	if req.SetCookies != nil {
		setCookies = *req.SetCookies
	}
	if setCookies {
		h.setTokenCookie(w, created.Token)
		h.setClaimCookie(w, claim, exp)
	}

	h.log.Info("auth.create.ok", "session_id", created.Session.ID)

	writeJSON(w, http.StatusCreated, createResponse{
		Session:        created.Session.Public(),
		Token:          created.Token,
		Claim:          claim,
		ClaimExpiresAt: exp,
	})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleGetCurrent(w, r)
	case http.MethodDelete:
		h.handleDeleteCurrent(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	cred := session.Credentials{
		Claim: h.claimFromRequest(r),
		Token: h.tokenFromRequest(r),
	}

	res, err := h.auth.Authenticate(r.Context(), h.now().UTC(), cred)
	if err != nil {
		h.writeSessionError(w, "current", err)
		return
	}

	if res.Claim != "" && h.cookieValue(r, h.cfg.TokenCookieName) != "" {
		// Cookie clients get the refreshed claim the same way they sent the token.
		h.setClaimCookie(w, res.Claim, res.ClaimExpiresAt)
	}

	writeJSON(w, http.StatusOK, toCurrentResponse(res))
}

func (h *Handler) handleDeleteCurrent(w http.ResponseWriter, r *http.Request) {
	tok := h.tokenFromRequest(r)

	err := h.auth.Service().Invalidate(r.Context(), h.now().UTC(), tok)
	if err != nil && !errors.Is(err, session.ErrUnauthenticated) {
		h.writeSessionError(w, "delete", err)
		return
	}

	// Logout always drops both cookies, whichever credential was presented.
	h.clearSessionCookies(w)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}
