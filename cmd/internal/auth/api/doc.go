// Package authapi exposes session creation, inspection and logout over HTTP.
//
// Routes:
//
//	POST   /v1/sessions          create a session, returns token and claim
//	GET    /v1/sessions/current  authenticate (claim first, token fallback)
//	DELETE /v1/sessions/current  revoke the presented session
//
// The token is read from "Authorization: Bearer" or the session cookie; the
// claim from the claim header or cookie. Every authentication failure maps to
// the same 401 body.
package authapi
