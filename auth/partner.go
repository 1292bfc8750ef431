package auth

import (
	"context"
	"crypto/rsa"
	"crypto/tls"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/transport"
)

// PartnerCredentials drives the RSA-signed three-legged flow for partner
// applications. Every network step presents the client certificate, and a
// verified credential can renew its access token with Refresh using the
// session handle the service hands back.
type PartnerCredentials struct {
	consumerKey    string
	consumerSecret string
	rsaKey         *rsa.PrivateKey
	clientCert     tls.Certificate
	callbackURI    string
	scope          string

	verified      bool
	token         string
	tokenSecret   string
	sessionHandle string

	expiresAt              time.Time
	authorizationExpiresAt time.Time

	endpoints core.EndpointConfig
	adapter   core.TransportAdapter
	logger    core.Logger

	now   func() time.Time
	nonce func() string
}

// NewPartner builds a partner credential. Unless WithTransport overrides it,
// token exchanges run over an HTTP client presenting clientCert, which the
// partner host requires.
func NewPartner(
	consumerKey string,
	consumerSecret string,
	rsaKeyPEM string,
	clientCert tls.Certificate,
	opts ...Option,
) (*PartnerCredentials, error) {
	consumerKey = strings.TrimSpace(consumerKey)
	consumerSecret = strings.TrimSpace(consumerSecret)
	if consumerKey == "" {
		return nil, fmt.Errorf("auth: consumer key is required")
	}
	if consumerSecret == "" {
		return nil, fmt.Errorf("auth: consumer secret is required")
	}
	rsaKey, err := core.ParseRSAPrivateKey(rsaKeyPEM)
	if err != nil {
		return nil, err
	}
	if len(clientCert.Certificate) == 0 {
		return nil, fmt.Errorf("auth: client certificate is required for partner credentials")
	}

	s := applyOptions(opts)
	endpoints := core.DefaultConfig().PartnerEndpoints
	if s.hasEndpoint {
		endpoints = s.endpoints
	}
	adapter := s.adapter
	if adapter == nil {
		adapter = transport.NewRESTAdapter(transport.NewCertificateClient(&clientCert))
	}
	_, logger := glog.Resolve("xero.auth", s.loggerProvider, s.logger)

	return &PartnerCredentials{
		consumerKey:            consumerKey,
		consumerSecret:         consumerSecret,
		rsaKey:                 rsaKey,
		clientCert:             clientCert,
		callbackURI:            s.callbackURI,
		scope:                  s.scope,
		verified:               s.verified,
		token:                  s.token,
		tokenSecret:            s.tokenSecret,
		sessionHandle:          s.sessionHandle,
		expiresAt:              s.expiresAt,
		authorizationExpiresAt: s.authorizationExpiresAt,
		endpoints:              endpoints,
		adapter:                adapter,
		logger:                 glog.Ensure(logger),
		now:                    s.now,
		nonce:                  s.nonce,
	}, nil
}

// Initiate obtains a request token from the partner host.
func (c *PartnerCredentials) Initiate(ctx context.Context) error {
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

// AuthorizationURL returns the consent URL. Partner applications authorize
// on the public host even though tokens live on the partner host.
func (c *PartnerCredentials) AuthorizationURL() (string, error) {
	return authorizeURL(c.endpoints.AuthorizeURL, c.token, c.scope)
}

// Verify exchanges the request token plus verifier for an access token and
// captures the session handle and expiry timestamps.
func (c *PartnerCredentials) Verify(ctx context.Context, verifier string) error {
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
	return c.applyAccessToken(values)
}

// Refresh renews the access token using the stored session handle. Only a
// verified partner credential can refresh.
func (c *PartnerCredentials) Refresh(ctx context.Context) error {
	if c.sessionHandle == "" {
		return fmt.Errorf("auth: no session handle; verify the credential first")
	}
	signing := c.requestSigning()
	signing.Token = c.token
	signing.TokenSecret = c.tokenSecret

	// The session handle rides as a query parameter and participates in the
	// signature base string.
	refreshURL := c.endpoints.AccessTokenURL + "?" +
		url.Values{"oauth_session_handle": {c.sessionHandle}}.Encode()

	values, err := exchangeToken(ctx, c.adapter, signing, refreshURL, nil)
	if err != nil {
		return err
	}
	return c.applyAccessToken(values)
}

// applyAccessToken stores the token pair from an access-token response and
// converts the relative expiry durations to absolute timestamps.
func (c *PartnerCredentials) applyAccessToken(values url.Values) error {
	token, secret, err := requireTokenPair(values)
	if err != nil {
		return err
	}
	c.token = token
	c.tokenSecret = secret
	c.verified = true

	if handle := values.Get("oauth_session_handle"); handle != "" {
		c.sessionHandle = handle
	}
	now := c.now()
	if c.expiresAt, err = expiryFrom(now, values.Get("oauth_expires_in")); err != nil {
		return err
	}
	if c.authorizationExpiresAt, err = expiryFrom(now, values.Get("oauth_authorization_expires_in")); err != nil {
		return err
	}
	c.logger.Debug("access token stored",
		"endpoint", c.endpoints.AccessTokenURL,
		"expires_at", c.expiresAt,
	)
	return nil
}

func expiryFrom(now time.Time, seconds string) (time.Time, error) {
	if seconds == "" {
		return time.Time{}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(seconds))
	if err != nil {
		return time.Time{}, fmt.Errorf("auth: parse expiry seconds %q: %w", seconds, err)
	}
	return now.Add(time.Duration(n) * time.Second), nil
}

// ClientCert returns the certificate every partner API connection must
// present. Resource managers consult it when building their transport.
func (c *PartnerCredentials) ClientCert() *tls.Certificate {
	if c == nil {
		return nil
	}
	return &c.clientCert
}

// Expired reports whether the access token's expiry has passed. A credential
// with no recorded expiry never reports expired.
func (c *PartnerCredentials) Expired() bool {
	return !c.expiresAt.IsZero() && !c.now().Before(c.expiresAt)
}

// SigningContext returns an RSA signing context carrying the client
// certificate the transport must present.
func (c *PartnerCredentials) SigningContext() (core.SigningContext, error) {
	if !c.verified {
		return core.SigningContext{}, core.NotVerifiedError("partner credentials haven't been verified")
	}
	return core.SigningContext{
		ConsumerKey:     c.consumerKey,
		ConsumerSecret:  c.consumerSecret,
		Token:           c.token,
		TokenSecret:     c.tokenSecret,
		SignatureMethod: core.SignatureMethodRSASHA1,
		RSAKey:          c.rsaKey,
		ClientCert:      &c.clientCert,
		Nonce:           c.nonce,
		Now:             c.now,
	}, nil
}

// APIURL returns the partner resource API base.
func (c *PartnerCredentials) APIURL() string {
	return c.endpoints.APIURL
}

// State returns the non-empty persistable fields, including the session
// handle and expiry timestamps the refresh loop needs.
func (c *PartnerCredentials) State() core.CredentialState {
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
	if c.sessionHandle != "" {
		state[core.StateSessionHandle] = c.sessionHandle
	}
	if !c.expiresAt.IsZero() {
		state[core.StateExpiresAt] = c.expiresAt
	}
	if !c.authorizationExpiresAt.IsZero() {
		state[core.StateAuthorizationExpiresAt] = c.authorizationExpiresAt
	}
	return state
}

func (c *PartnerCredentials) requestSigning() core.SigningContext {
	return core.SigningContext{
		ConsumerKey:     c.consumerKey,
		ConsumerSecret:  c.consumerSecret,
		SignatureMethod: core.SignatureMethodRSASHA1,
		RSAKey:          c.rsaKey,
		ClientCert:      &c.clientCert,
		CallbackURI:     c.callbackURI,
		Nonce:           c.nonce,
		Now:             c.now,
	}
}

var _ core.SigningContextProvider = (*PartnerCredentials)(nil)
