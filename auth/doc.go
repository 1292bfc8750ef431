// Package auth implements the OAuth 1.0a credential variants for the Xero
// API: public (HMAC-signed three-legged flow), private (RSA-signed, verified
// at construction), and partner (RSA-signed over a client-certificate
// connection, with refreshable sessions).
//
// Each variant walks the same state machine: Initiate obtains a request
// token, AuthorizationURL sends the user to consent, Verify exchanges the
// verifier for an access token, and SigningContext hands the resulting token
// pair to the resource layer. State snapshots round-trip through
// WithRestoredState so callers can persist credentials between runs.
package auth
