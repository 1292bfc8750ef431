package core

// Persisted credential-state keys. State snapshots carry only the non-empty
// subset of these; the partner keys appear only for partner credentials.
const (
	StateConsumerKey            = "consumer_key"
	StateConsumerSecret         = "consumer_secret"
	StateCallbackURI            = "callback_uri"
	StateVerified               = "verified"
	StateOAuthToken             = "oauth_token"
	StateOAuthTokenSecret       = "oauth_token_secret"
	StateScope                  = "scope"
	StateSessionHandle          = "oauth_session_handle"
	StateExpiresAt              = "oauth_expires_at"
	StateAuthorizationExpiresAt = "oauth_authorization_expires_at"
)

// CredentialState is the minimal serializable snapshot a credential exposes
// for persistence. The store/sql package persists these verbatim.
type CredentialState = map[string]any
