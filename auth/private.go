package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-xero/core"
)

// PrivateCredentials signs requests with an RSA key registered against one
// organisation. The consumer key doubles as the resource-owner token, so the
// credential is verified the moment it is constructed; there is no handshake.
type PrivateCredentials struct {
	consumerKey string
	rsaKey      *rsa.PrivateKey

	endpoints core.EndpointConfig
	logger    core.Logger

	now   func() time.Time
	nonce func() string
}

// NewPrivate builds a private credential from the consumer key and the
// PEM-encoded RSA private key. The key is parsed here so a bad key fails
// fast instead of on the first request.
func NewPrivate(consumerKey string, rsaKeyPEM string, opts ...Option) (*PrivateCredentials, error) {
	consumerKey = strings.TrimSpace(consumerKey)
	if consumerKey == "" {
		return nil, fmt.Errorf("auth: consumer key is required")
	}
	rsaKey, err := core.ParseRSAPrivateKey(rsaKeyPEM)
	if err != nil {
		return nil, err
	}

	s := applyOptions(opts)
	endpoints := core.DefaultConfig().Endpoints
	if s.hasEndpoint {
		endpoints = s.endpoints
	}
	_, logger := glog.Resolve("xero.auth", s.loggerProvider, s.logger)

	return &PrivateCredentials{
		consumerKey: consumerKey,
		rsaKey:      rsaKey,
		endpoints:   endpoints,
		logger:      glog.Ensure(logger),
		now:         s.now,
		nonce:       s.nonce,
	}, nil
}

// Initiate is a no-op: private credentials skip the token handshake.
func (c *PrivateCredentials) Initiate(context.Context) error {
	return nil
}

// AuthorizationURL is not part of the private flow.
func (c *PrivateCredentials) AuthorizationURL() (string, error) {
	return "", fmt.Errorf("auth: private credentials do not use the authorize step")
}

// Verify is not part of the private flow.
func (c *PrivateCredentials) Verify(context.Context, string) error {
	return fmt.Errorf("auth: private credentials are verified at construction")
}

// Refresh is not supported for private credentials.
func (c *PrivateCredentials) Refresh(context.Context) error {
	return fmt.Errorf("auth: private credentials do not support refresh")
}

// SigningContext returns an RSA signing context with the consumer key as the
// token.
func (c *PrivateCredentials) SigningContext() (core.SigningContext, error) {
	return core.SigningContext{
		ConsumerKey:     c.consumerKey,
		Token:           c.consumerKey,
		SignatureMethod: core.SignatureMethodRSASHA1,
		RSAKey:          c.rsaKey,
		Nonce:           c.nonce,
		Now:             c.now,
	}, nil
}

// APIURL returns the resource API base for this credential mode.
func (c *PrivateCredentials) APIURL() string {
	return c.endpoints.APIURL
}

// State returns the persistable fields. The RSA key is excluded; callers
// keep key material in their own secret store.
func (c *PrivateCredentials) State() core.CredentialState {
	return core.CredentialState{
		core.StateConsumerKey: c.consumerKey,
		core.StateVerified:    true,
		core.StateOAuthToken:  c.consumerKey,
	}
}

var _ core.SigningContextProvider = (*PrivateCredentials)(nil)
