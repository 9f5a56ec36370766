package authapi

import (
	"errors"
	"net/http"

	"tessera/cmd/internal/auth/session"
)

func toCurrentResponse(res session.Result) currentResponse {
	out := currentResponse{
		Session: res.Session,
		Via:     res.Source,
		Claim:   res.Claim,
	}
	if res.Claim != "" {
		exp := res.ClaimExpiresAt
		out.ClaimExpiresAt = &exp
	}
	return out
}

// writeSessionError maps session errors to one response per class. Every
// authentication failure gets the same body so callers cannot tell an
// unknown id from a bad secret or an expired session.
func (h *Handler) writeSessionError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, session.ErrStoreUnavailable):
		h.log.Error("auth."+op+".store_unavailable", "err", err)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "please retry later")
	default:
		h.log.Error("auth."+op+".fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
