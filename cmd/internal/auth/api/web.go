package authapi

import (
	"net/http"
	"strings"
	"time"
)

// tokenFromRequest reads the session token from "Authorization: Bearer"
// or, failing that, the token cookie.
func (h *Handler) tokenFromRequest(r *http.Request) string {
	if v, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return v
	}
	return h.cookieValue(r, h.cfg.TokenCookieName)
}

// claimFromRequest reads the signed claim from the claim header or cookie.
func (h *Handler) claimFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(h.cfg.ClaimHeaderName)); v != "" {
		return v
	}
	return h.cookieValue(r, h.cfg.ClaimCookieName)
}

func bearerToken(header string) (string, bool) {
	scheme, v, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (h *Handler) cookieValue(r *http.Request, name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

// setTokenCookie stores the session token. It has no Expires: lifetime is
// decided server-side by the inactivity policy.
func (h *Handler) setTokenCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.TokenCookieName,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

func (h *Handler) setClaimCookie(w http.ResponseWriter, value string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.ClaimCookieName,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	h.expireCookie(w, h.cfg.TokenCookieName)
	h.expireCookie(w, h.cfg.ClaimCookieName)
}

func (h *Handler) expireCookie(w http.ResponseWriter, name string) {
	if strings.TrimSpace(name) == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}
