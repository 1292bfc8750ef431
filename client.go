// Package xero is an OAuth 1.0a client for the Xero accounting API. A Client
// wraps one credential (public, private, or partner mode) and exposes the
// service's named collections as resource managers sharing that credential.
package xero

import (
	"context"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-xero/auth"
	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/resource"
)

// Client is the facade over one credential's resource managers. Managers are
// built lazily and cached per collection.
type Client struct {
	credentials auth.Credentials
	config      core.Config
	adapter     core.TransportAdapter
	logger      core.Logger

	configProvider  core.ConfigProvider
	optionsResolver core.OptionsResolver
	runtimeConfig   core.Config

	mu       sync.Mutex
	managers map[string]*resource.Manager
}

// Option configures a Client.
type Option func(*Client)

// WithConfig applies runtime configuration overrides, merged over the loaded
// configuration and the defaults.
func WithConfig(config core.Config) Option {
	return func(c *Client) {
		c.runtimeConfig = config
	}
}

// WithConfigProvider replaces the source of loaded configuration.
func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(c *Client) {
		c.configProvider = provider
	}
}

// WithOptionsResolver replaces the layer-merge strategy for configuration.
func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(c *Client) {
		c.optionsResolver = resolver
	}
}

// WithTransport replaces the HTTP adapter shared by every manager.
func WithTransport(adapter core.TransportAdapter) Option {
	return func(c *Client) {
		c.adapter = adapter
	}
}

// WithLogger sets the client logger.
func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client over the given credentials. Configuration resolves in
// three layers, defaults under loaded under runtime overrides, before any
// manager is constructed. The resource API base comes from the credential
// (public vs partner host); the payroll base comes from the configuration.
func New(credentials auth.Credentials, opts ...Option) (*Client, error) {
	c := &Client{
		credentials: credentials,
		managers:    map[string]*resource.Manager{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.configProvider == nil {
		c.configProvider = core.NewCfgxConfigProvider(nil)
	}
	if c.optionsResolver == nil {
		c.optionsResolver = core.GoOptionsResolver{}
	}

	defaults := core.DefaultConfig()
	loaded, err := c.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, err
	}
	resolved, err := c.optionsResolver.Resolve(defaults, loaded, c.runtimeConfig)
	if err != nil {
		return nil, err
	}
	c.config = resolved
	c.logger = glog.Ensure(c.logger)
	return c, nil
}

// Credentials returns the credential the client was built over, e.g. to
// drive the handshake or persist its state.
func (c *Client) Credentials() auth.Credentials {
	return c.credentials
}

// Collection returns the manager for an arbitrary collection name on the
// accounting API.
func (c *Client) Collection(name string) *resource.Manager {
	return c.manager(name, c.apiURL())
}

// PayrollCollection returns the manager for a payroll API collection, which
// lives under a different URL prefix.
func (c *Client) PayrollCollection(name string) *resource.Manager {
	return c.manager(name, c.payrollURL())
}

func (c *Client) manager(name string, apiURL string) *resource.Manager {
	key := apiURL + "|" + name
	c.mu.Lock()
	defer c.mu.Unlock()
	if manager, ok := c.managers[key]; ok {
		return manager
	}
	manager := resource.NewManager(name, c.credentials,
		resource.WithAPIURL(apiURL),
		resource.WithTransport(c.adapter),
		resource.WithLogger(c.logger),
	)
	c.managers[key] = manager
	return manager
}

func (c *Client) apiURL() string {
	if c.credentials != nil {
		if apiURL := strings.TrimSpace(c.credentials.APIURL()); apiURL != "" {
			return apiURL
		}
	}
	return c.config.Endpoints.APIURL
}

// payrollURL derives the payroll prefix on the same host the credential
// addresses, falling back to the configured value.
func (c *Client) payrollURL() string {
	apiURL := c.apiURL()
	if strings.Contains(apiURL, "api.xro/2.0") {
		return strings.Replace(apiURL, "api.xro/2.0", "payroll.xro/1.0", 1)
	}
	return c.config.PayrollAPIURL
}
