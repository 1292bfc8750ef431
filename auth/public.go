package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-xero/core"
)

// PublicCredentials drives the HMAC-signed three-legged flow for public
// applications. A fresh credential holds no token; Initiate, the authorize
// redirect, and Verify move it to the verified state.
type PublicCredentials struct {
	consumerKey    string
	consumerSecret string
	callbackURI    string
	scope          string

	verified    bool
	token       string
	tokenSecret string

	endpoints core.EndpointConfig
	adapter   core.TransportAdapter
	logger    core.Logger

	now   func() time.Time
	nonce func() string
}

// NewPublic builds a public credential. Restored state (via
// WithRestoredState) may place it directly in the request-issued or verified
// state; otherwise Initiate must run before AuthorizationURL.
func NewPublic(consumerKey string, consumerSecret string, opts ...Option) (*PublicCredentials, error) {
	consumerKey = strings.TrimSpace(consumerKey)
	consumerSecret = strings.TrimSpace(consumerSecret)
	if consumerKey == "" {
		return nil, fmt.Errorf("auth: consumer key is required")
	}
	if consumerSecret == "" {
		return nil, fmt.Errorf("auth: consumer secret is required")
	}

	s := applyOptions(opts)
	endpoints := core.DefaultConfig().Endpoints
	if s.hasEndpoint {
		endpoints = s.endpoints
	}
	_, logger := glog.Resolve("xero.auth", s.loggerProvider, s.logger)

	return &PublicCredentials{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		callbackURI:    s.callbackURI,
		scope:          s.scope,
		verified:       s.verified,
		token:          s.token,
		tokenSecret:    s.tokenSecret,
		endpoints:      endpoints,
		adapter:        defaultAdapter(s),
		logger:         glog.Ensure(logger),
		now:            s.now,
		nonce:          s.nonce,
	}, nil
}

// Initiate obtains a request token from the service.
func (c *PublicCredentials) Initiate(ctx context.Context) error {
	values, err := exchangeToken(ctx, c.adapter, c.requestSigning(), c.endpoints.RequestTokenURL, nil)
	if err != nil {
		return err
	}
	token, secret, err := requireTokenPair(values)
	if err != nil {
		return err
	}
	c.token = token
	c.tokenSecret = secret
	c.verified = false
	c.logger.Debug("request token issued", "endpoint", c.endpoints.RequestTokenURL)
	return nil
}

// AuthorizationURL returns the consent URL the user must visit. Pure; no
// network I/O.
func (c *PublicCredentials) AuthorizationURL() (string, error) {
	return authorizeURL(c.endpoints.AuthorizeURL, c.token, c.scope)
}

// Verify exchanges the request token plus verifier for an access token and
// flips the credential to verified.
func (c *PublicCredentials) Verify(ctx context.Context, verifier string) error {
	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return fmt.Errorf("auth: verifier is required")
	}
	signing := c.requestSigning()
	signing.Token = c.token
	signing.TokenSecret = c.tokenSecret
	signing.Verifier = verifier

	values, err := exchangeToken(ctx, c.adapter, signing, c.endpoints.AccessTokenURL, nil)
	if err != nil {
		return err
	}
	token, secret, err := requireTokenPair(values)
	if err != nil {
		return err
	}
	c.token = token
	c.tokenSecret = secret
	c.verified = true
	c.logger.Debug("credential verified", "endpoint", c.endpoints.AccessTokenURL)
	return nil
}

// Refresh is not supported for public credentials.
func (c *PublicCredentials) Refresh(context.Context) error {
	return fmt.Errorf("auth: public credentials do not support refresh")
}

// SigningContext returns the resource-request signing material, failing with
// a not-verified error until Verify has succeeded.
func (c *PublicCredentials) SigningContext() (core.SigningContext, error) {
	if !c.verified {
		return core.SigningContext{}, core.NotVerifiedError("public credentials haven't been verified")
	}
	return core.SigningContext{
		ConsumerKey:     c.consumerKey,
		ConsumerSecret:  c.consumerSecret,
		Token:           c.token,
		TokenSecret:     c.tokenSecret,
		SignatureMethod: core.SignatureMethodHMACSHA1,
		Nonce:           c.nonce,
		Now:             c.now,
	}, nil
}

// APIURL returns the resource API base for this credential mode.
func (c *PublicCredentials) APIURL() string {
	return c.endpoints.APIURL
}

// State returns the non-empty persistable fields.
func (c *PublicCredentials) State() core.CredentialState {
	state := core.CredentialState{
		core.StateConsumerKey:    c.consumerKey,
		core.StateConsumerSecret: c.consumerSecret,
		core.StateVerified:       c.verified,
	}
	if c.callbackURI != "" {
		state[core.StateCallbackURI] = c.callbackURI
	}
	if c.scope != "" {
		state[core.StateScope] = c.scope
	}
	if c.token != "" {
		state[core.StateOAuthToken] = c.token
	}
	if c.tokenSecret != "" {
		state[core.StateOAuthTokenSecret] = c.tokenSecret
	}
	return state
}

// requestSigning is the signing context used during the handshake, before an
// access token exists.
func (c *PublicCredentials) requestSigning() core.SigningContext {
	return core.SigningContext{
		ConsumerKey:     c.consumerKey,
		ConsumerSecret:  c.consumerSecret,
		SignatureMethod: core.SignatureMethodHMACSHA1,
		CallbackURI:     c.callbackURI,
		Nonce:           c.nonce,
		Now:             c.now,
	}
}

var _ core.SigningContextProvider = (*PublicCredentials)(nil)
