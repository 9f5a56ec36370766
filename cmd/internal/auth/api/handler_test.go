package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tessera/cmd/internal/auth/session"
	"tessera/cmd/security/token"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type testServer struct {
	mux   *http.ServeMux
	clock *clock
	store session.Store
}

func newTestServer(t *testing.T, store session.Store) *testServer {
	t.Helper()

	cfg := session.DefaultConfig()
	cfg.ClaimKeyHex = strings.Repeat("ab", 32)

	svc, err := session.NewService(cfg, store, token.NewHasher(nil))
	require.NoError(t, err)
	keys, err := cfg.ClaimKeys()
	require.NoError(t, err)
	codec, err := session.NewClaimCodec(keys, cfg.ClaimTTL)
	require.NoError(t, err)

	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	h, err := NewHandler(nil, DefaultConfig(), session.NewAuthenticator(svc, codec), WithClock(c.now))
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	return &testServer{mux: mux, clock: c, store: store}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req.WithContext(session.WithRequestCache(req.Context())))
	return rr
}

func (s *testServer) create(t *testing.T, body string) (createResponse, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	rr := s.do(t, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var out createResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out, rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return m
}

func TestCreate_ReturnsTokenClaimAndCookies(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())

	out, rr := srv.create(t, "")
	assert.Len(t, out.Token, 2*token.Length+1)
	assert.NotEmpty(t, out.Claim)
	assert.Equal(t, srv.clock.t.Add(session.DefaultClaimTTL), out.ClaimExpiresAt.UTC())
	assert.Equal(t, srv.clock.t, out.Session.CreatedAt)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	raw := decodeBody(t, rr)
	sess := raw["session"].(map[string]any)
	assert.ElementsMatch(t, []string{"id", "created_at"}, keysOf(sess))

	cookies := map[string]*http.Cookie{}
	for _, c := range rr.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, "session")
	require.Contains(t, cookies, "session_claim")
	assert.Equal(t, out.Token, cookies["session"].Value)
	assert.True(t, cookies["session"].HttpOnly)
	assert.True(t, cookies["session"].Secure)
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestCreate_CookiesOptOut(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())

	_, rr := srv.create(t, `{"set_cookies":false}`)
	assert.Empty(t, rr.Result().Cookies())
}

func TestCreate_BadBody(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())

	rr := srv.do(t, httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"nope":1}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = srv.do(t, httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{} {}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	huge := `{"set_cookies":` + strings.Repeat(" ", 1<<17) + `false}`
	rr = srv.do(t, httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(huge)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = srv.do(t, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCurrent_ClaimThenTokenFallback(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())
	out, _ := srv.create(t, `{"set_cookies":false}`)

	// Claim path.
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/current", nil)
	req.Header.Set("X-Session-Claim", out.Claim)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	rr := srv.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	assert.Equal(t, "claim", body["via"])
	assert.NotContains(t, body, "claim")

	// After the claim expires the token is used and a fresh claim returned.
	srv.clock.t = srv.clock.t.Add(2 * time.Minute)
	rr = srv.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body = decodeBody(t, rr)
	assert.Equal(t, "token", body["via"])
	assert.NotEmpty(t, body["claim"])
	assert.NotEmpty(t, body["claim_expires_at"])
}

func TestCurrent_CookieTransport(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())
	_, created := srv.create(t, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/current", nil)
	for _, c := range created.Result().Cookies() {
		if c.Name == "session" {
			req.AddCookie(c)
		}
	}
	rr := srv.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var refreshed bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session_claim" && c.Value != "" {
			refreshed = true
		}
	}
	assert.True(t, refreshed)
}

func TestCurrent_UniformUnauthorized(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())
	out, _ := srv.create(t, `{"set_cookies":false}`)
	id, _, _ := session.SplitToken(out.Token)
	other, err := token.Generate()
	require.NoError(t, err)

	cases := map[string]string{
		"missing":      "",
		"malformed":    "Bearer abc",
		"wrong secret": "Bearer " + session.JoinToken(id, other),
		"unknown id":   "Bearer " + session.JoinToken(other, other),
		"wrong scheme": "Basic " + out.Token,
	}

	var bodies []string
	for name, auth := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/sessions/current", nil)
			if auth != "" {
				req.Header.Set("Authorization", auth)
			}
			rr := srv.do(t, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			bodies = append(bodies, rr.Body.String())
		})
	}
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}

type brokenStore struct{ *session.MemoryStore }

func (brokenStore) GetByID(context.Context, string) (session.Record, error) {
	return session.Record{}, assert.AnError
}

func TestCurrent_StoreUnavailable(t *testing.T) {
	srv := newTestServer(t, brokenStore{session.NewMemoryStore()})
	out, _ := srv.create(t, `{"set_cookies":false}`)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/current", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	rr := srv.do(t, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	errObj := decodeBody(t, rr)["error"].(map[string]any)
	assert.Equal(t, "store_unavailable", errObj["code"])
}

func TestDeleteCurrent(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())
	out, _ := srv.create(t, `{"set_cookies":false}`)

	del := httptest.NewRequest(http.MethodDelete, "/v1/sessions/current", nil)
	del.Header.Set("Authorization", "Bearer "+out.Token)
	rr := srv.do(t, del)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// Idempotent.
	rr = srv.do(t, del)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	get := httptest.NewRequest(http.MethodGet, "/v1/sessions/current", nil)
	get.Header.Set("Authorization", "Bearer "+out.Token)
	rr = srv.do(t, get)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDeleteCurrent_ClearsCookies(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())
	out, _ := srv.create(t, "")

	del := httptest.NewRequest(http.MethodDelete, "/v1/sessions/current", nil)
	del.AddCookie(&http.Cookie{Name: "session", Value: out.Token})
	rr := srv.do(t, del)
	require.Equal(t, http.StatusNoContent, rr.Code)

	cleared := 0
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared++
		}
	}
	assert.Equal(t, 2, cleared)
}

func TestDeleteCurrent_BearerAlsoClearsCookies(t *testing.T) {
	srv := newTestServer(t, session.NewMemoryStore())
	out, _ := srv.create(t, `{"set_cookies":false}`)

	for name, tok := range map[string]string{"valid": out.Token, "unknown": "x.y"} {
		t.Run(name, func(t *testing.T) {
			del := httptest.NewRequest(http.MethodDelete, "/v1/sessions/current", nil)
			del.Header.Set("Authorization", "Bearer "+tok)
			rr := srv.do(t, del)
			require.Equal(t, http.StatusNoContent, rr.Code)

			cleared := map[string]bool{}
			for _, c := range rr.Result().Cookies() {
				if c.MaxAge < 0 {
					cleared[c.Name] = true
				}
			}
			assert.Equal(t, map[string]bool{"session": true, "session_claim": true}, cleared)
		})
	}
}

func TestNewHandler_RequiresAuthenticator(t *testing.T) {
	_, err := NewHandler(nil, DefaultConfig(), nil)
	require.Error(t, err)
}
