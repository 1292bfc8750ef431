package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

// ConfigProvider loads endpoint configuration over a set of defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// RawConfigLoader supplies raw key/value configuration, typically from a file
// or the environment.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges defaults, loaded configuration, and runtime
// overrides into one validated Config.
type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver layers defaults < loaded < runtime with go-options.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if endpoints := endpointLayerMap(cfg.Endpoints, includeZero); len(endpoints) > 0 {
		layer["endpoints"] = endpoints
	}
	if endpoints := endpointLayerMap(cfg.PartnerEndpoints, includeZero); len(endpoints) > 0 {
		layer["partner_endpoints"] = endpoints
	}
	if includeZero || strings.TrimSpace(cfg.PayrollAPIURL) != "" {
		layer["payroll_api_url"] = cfg.PayrollAPIURL
	}
	return layer
}

func endpointLayerMap(endpoints EndpointConfig, includeZero bool) map[string]any {
	layer := map[string]any{}
	for key, value := range map[string]string{
		"request_token_url": endpoints.RequestTokenURL,
		"authorize_url":     endpoints.AuthorizeURL,
		"access_token_url":  endpoints.AccessTokenURL,
		"api_url":           endpoints.APIURL,
	} {
		if includeZero || strings.TrimSpace(value) != "" {
			layer[key] = value
		}
	}
	return layer
}
