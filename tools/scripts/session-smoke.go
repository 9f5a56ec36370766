// Package main provides a CI-friendly smoke test for the tessera session API.
//
// It validates:
//   - create returns a token and a signed claim
//   - the token authenticates via the store path
//   - the claim authenticates without the token
//   - a forged token is rejected
//   - revoke removes the session from the store
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	claimHeader     = "X-Session-Claim"
	requestIDHeader = "X-Request-ID"
	maxReadBytes    = 1 << 20 // 1MiB
)

type validated struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

type createResponse struct {
	Session        validated `json:"session"`
	Token          string    `json:"token"`
	Claim          string    `json:"claim"`
	ClaimExpiresAt time.Time `json:"claim_expires_at"`
}

type currentResponse struct {
	Session validated `json:"session"`
	Via     string    `json:"via"`
	Claim   string    `json:"claim,omitempty"`
}

type smokeClient struct {
	base    *url.URL
	http    *http.Client
	verbose bool
}

func main() {
	var (
		baseURL = flag.String("url", "http://127.0.0.1:8080", "Base URL of the tessera server")
		timeout = flag.Duration("timeout", 5*time.Second, "Per-step timeout")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	u, err := validateBaseURL(*baseURL)
	if err != nil {
		fatalf("invalid -url: %v", err)
	}

	c := &smokeClient{
		base:    u,
		http:    &http.Client{Timeout: *timeout},
		verbose: *verbose,
	}
	root := context.Background()

	created := mustCreate(root, c, *timeout)

	byToken := mustCurrent(root, c, *timeout, created.Token, "")
	if byToken.Session.ID != created.Session.ID {
		fatalf("token path: session id mismatch: want=%s got=%s", created.Session.ID, byToken.Session.ID)
	}
	if byToken.Via != "token" {
		fatalf("token path: via=%q, want token", byToken.Via)
	}
	if byToken.Claim == "" {
		fatalf("token path: no fresh claim minted")
	}

	byClaim := mustCurrent(root, c, *timeout, "", created.Claim)
	if byClaim.Session.ID != created.Session.ID {
		fatalf("claim path: session id mismatch: want=%s got=%s", created.Session.ID, byClaim.Session.ID)
	}
	if byClaim.Via != "claim" {
		fatalf("claim path: via=%q, want claim", byClaim.Via)
	}

	mustStatus(root, c, *timeout, http.MethodGet, forge(created.Token), "", http.StatusUnauthorized)

	mustStatus(root, c, *timeout, http.MethodDelete, created.Token, "", http.StatusNoContent)
	mustStatus(root, c, *timeout, http.MethodGet, created.Token, "", http.StatusUnauthorized)

	fmt.Printf("OK: session_id=%s created_at=%d claim_expires_at=%s\n",
		created.Session.ID, created.Session.CreatedAt, created.ClaimExpiresAt.Format(time.RFC3339))
}

func validateBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

func mustCreate(parent context.Context, c *smokeClient, stepTimeout time.Duration) createResponse {
	body := []byte(`{"set_cookies":false}`)
	status, raw := c.mustDo(parent, stepTimeout, http.MethodPost, "/v1/sessions", body, "", "")
	if status != http.StatusCreated {
		fatalf("create: status=%d body=%s", status, raw)
	}

	var out createResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		fatalf("create: decode: %v", err)
	}
	if out.Session.ID == "" || out.Token == "" || out.Claim == "" {
		fatalf("create: incomplete response: %s", raw)
	}
	if !strings.HasPrefix(out.Token, out.Session.ID+".") {
		fatalf("create: token does not carry session id")
	}
	return out
}

func mustCurrent(parent context.Context, c *smokeClient, stepTimeout time.Duration, tok, claim string) currentResponse {
	status, raw := c.mustDo(parent, stepTimeout, http.MethodGet, "/v1/sessions/current", nil, tok, claim)
	if status != http.StatusOK {
		fatalf("current: status=%d body=%s", status, raw)
	}

	var out currentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		fatalf("current: decode: %v", err)
	}
	return out
}

func mustStatus(parent context.Context, c *smokeClient, stepTimeout time.Duration, method, tok, claim string, want int) {
	status, raw := c.mustDo(parent, stepTimeout, method, "/v1/sessions/current", nil, tok, claim)
	if status != want {
		fatalf("%s current: status=%d want=%d body=%s", method, status, want, raw)
	}
}

func (c *smokeClient) mustDo(parent context.Context, stepTimeout time.Duration, method, path string, body []byte, tok, claim string) (int, []byte) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), rd)
	if err != nil {
		fatalf("build %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if claim != "" {
		req.Header.Set(claimHeader, claim)
	}
	rid := ulid.Make().String()
	req.Header.Set(requestIDHeader, rid)

	resp, err := c.http.Do(req)
	if err != nil {
		fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReadBytes))
	if err != nil {
		fatalf("%s %s: read body: %v", method, path, err)
	}
	if got := resp.Header.Get(requestIDHeader); got != rid {
		fatalf("%s %s: request id not echoed: sent=%s got=%s", method, path, rid, got)
	}
	if c.verbose {
		fmt.Printf("%s %s -> %d rid=%s\n", method, path, resp.StatusCode, rid)
	}
	return resp.StatusCode, raw
}

// forge keeps the session id and replaces the secret half.
func forge(tok string) string {
	id, secret, ok := strings.Cut(tok, ".")
	if !ok || secret == "" {
		return tok
	}
	b := []byte(secret)
	if b[0] == 'a' {
		b[0] = 'b'
	} else {
		b[0] = 'a'
	}
	return id + "." + string(b)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
