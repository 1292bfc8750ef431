package auth

import (
	"time"

	"github.com/goliatone/go-xero/core"
)

type settings struct {
	endpoints   core.EndpointConfig
	hasEndpoint bool

	callbackURI string
	scope       string

	verified      bool
	token         string
	tokenSecret   string
	sessionHandle string

	expiresAt              time.Time
	authorizationExpiresAt time.Time

	adapter        core.TransportAdapter
	logger         core.Logger
	loggerProvider core.LoggerProvider

	now   func() time.Time
	nonce func() string
}

// Option configures a credential at construction.
type Option func(*settings)

// WithEndpoints overrides the OAuth endpoint set, e.g. to point at a test
// server.
func WithEndpoints(endpoints core.EndpointConfig) Option {
	return func(s *settings) {
		s.endpoints = endpoints
		s.hasEndpoint = true
	}
}

// WithCallbackURI sets the redirect the authorize step sends the user back
// to. Without one the service displays the verifier on screen.
func WithCallbackURI(uri string) Option {
	return func(s *settings) {
		s.callbackURI = uri
	}
}

// WithScope requests a payroll or other extended API scope during
// authorization.
func WithScope(scope string) Option {
	return func(s *settings) {
		s.scope = scope
	}
}

// WithTransport replaces the HTTP adapter used for token exchanges.
func WithTransport(adapter core.TransportAdapter) Option {
	return func(s *settings) {
		s.adapter = adapter
	}
}

// WithLogger sets the logger for handshake diagnostics.
func WithLogger(logger core.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithLoggerProvider sets the provider used to derive the credential logger.
func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(s *settings) {
		s.loggerProvider = provider
	}
}

// WithRestoredState reconstructs a credential from a persisted snapshot
// produced by State.
func WithRestoredState(state core.CredentialState) Option {
	return func(s *settings) {
		if state == nil {
			return
		}
		if value, ok := state[core.StateCallbackURI].(string); ok {
			s.callbackURI = value
		}
		if value, ok := state[core.StateScope].(string); ok {
			s.scope = value
		}
		if value, ok := state[core.StateVerified].(bool); ok {
			s.verified = value
		}
		if value, ok := state[core.StateOAuthToken].(string); ok {
			s.token = value
		}
		if value, ok := state[core.StateOAuthTokenSecret].(string); ok {
			s.tokenSecret = value
		}
		if value, ok := state[core.StateSessionHandle].(string); ok {
			s.sessionHandle = value
		}
		if value, ok := state[core.StateExpiresAt].(time.Time); ok {
			s.expiresAt = value
		}
		if value, ok := state[core.StateAuthorizationExpiresAt].(time.Time); ok {
			s.authorizationExpiresAt = value
		}
	}
}

// WithClock pins the clock used for expiry math.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithNonce pins the nonce source used when signing.
func WithNonce(nonce func() string) Option {
	return func(s *settings) {
		s.nonce = nonce
	}
}

func applyOptions(opts []Option) settings {
	s := settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}
