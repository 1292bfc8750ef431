package core

import (
	"fmt"
	"strings"
)

const (
	defaultBaseURL        = "https://api.xero.com"
	defaultPartnerBaseURL = "https://api-partner.network.xero.com"
)

// EndpointConfig holds the OAuth handshake URLs for one Xero host.
type EndpointConfig struct {
	RequestTokenURL string `koanf:"request_token_url" mapstructure:"request_token_url"`
	AuthorizeURL    string `koanf:"authorize_url" mapstructure:"authorize_url"`
	AccessTokenURL  string `koanf:"access_token_url" mapstructure:"access_token_url"`
	APIURL          string `koanf:"api_url" mapstructure:"api_url"`
}

// Config carries every endpoint the client can reach: the public/private API
// host, the partner (client-certificate) host, and the payroll API prefix.
type Config struct {
	Endpoints        EndpointConfig `koanf:"endpoints" mapstructure:"endpoints"`
	PartnerEndpoints EndpointConfig `koanf:"partner_endpoints" mapstructure:"partner_endpoints"`
	PayrollAPIURL    string         `koanf:"payroll_api_url" mapstructure:"payroll_api_url"`
}

func DefaultConfig() Config {
	return Config{
		Endpoints: EndpointConfig{
			RequestTokenURL: defaultBaseURL + "/oauth/RequestToken",
			AuthorizeURL:    defaultBaseURL + "/oauth/Authorize",
			AccessTokenURL:  defaultBaseURL + "/oauth/AccessToken",
			APIURL:          defaultBaseURL + "/api.xro/2.0",
		},
		PartnerEndpoints: EndpointConfig{
			RequestTokenURL: defaultPartnerBaseURL + "/oauth/RequestToken",
			// Partner applications authorize against the public host.
			AuthorizeURL:   defaultBaseURL + "/oauth/Authorize",
			AccessTokenURL: defaultPartnerBaseURL + "/oauth/AccessToken",
			APIURL:         defaultPartnerBaseURL + "/api.xro/2.0",
		},
		PayrollAPIURL: defaultBaseURL + "/payroll.xro/1.0",
	}
}

func (c EndpointConfig) Validate() error {
	for name, value := range map[string]string{
		"request_token_url": c.RequestTokenURL,
		"authorize_url":     c.AuthorizeURL,
		"access_token_url":  c.AccessTokenURL,
		"api_url":           c.APIURL,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("core: endpoint %s is required", name)
		}
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Endpoints.Validate(); err != nil {
		return err
	}
	if err := c.PartnerEndpoints.Validate(); err != nil {
		return fmt.Errorf("core: partner endpoints: %w", err)
	}
	if strings.TrimSpace(c.PayrollAPIURL) == "" {
		return fmt.Errorf("core: payroll_api_url is required")
	}
	return nil
}
