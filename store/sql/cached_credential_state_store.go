package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const credentialStateCacheKeyPrefix = "go-xero::credential_state::v1"

// StateReader is the read/write surface the cached wrapper decorates.
type StateReader interface {
	SaveNewVersion(ctx context.Context, in SaveStateInput) (StoredState, error)
	GetActiveByName(ctx context.Context, name string) (StoredState, error)
	RevokeActive(ctx context.Context, name string, reason string) error
}

// CachedCredentialStateStore caches active-state reads and invalidates the
// cache entry on every write for the same credential name.
type CachedCredentialStateStore struct {
	base  StateReader
	cache repositorycache.CacheService
}

func NewCachedCredentialStateStore(
	base StateReader,
	cacheService repositorycache.CacheService,
) (*CachedCredentialStateStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base credential state store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: credential state cache service is required")
	}
	return &CachedCredentialStateStore{base: base, cache: cacheService}, nil
}

// CredentialStateCacheKey returns the deterministic cache key for
// active-state reads: go-xero::credential_state::v1::<name> with the name
// URL-path escaped.
func CredentialStateCacheKey(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: credential name is required")
	}
	return credentialStateCacheKeyPrefix + "::" + url.PathEscape(trimmed), nil
}

func (s *CachedCredentialStateStore) SaveNewVersion(ctx context.Context, in SaveStateInput) (StoredState, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return StoredState{}, fmt.Errorf("sqlstore: cached credential state store is not configured")
	}
	created, err := s.base.SaveNewVersion(ctx, in)
	if err != nil {
		return StoredState{}, err
	}
	cacheKey, err := CredentialStateCacheKey(created.Name)
	if err != nil {
		return StoredState{}, err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return StoredState{}, err
	}
	return created, nil
}

func (s *CachedCredentialStateStore) GetActiveByName(ctx context.Context, name string) (StoredState, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return StoredState{}, fmt.Errorf("sqlstore: cached credential state store is not configured")
	}
	cacheKey, err := CredentialStateCacheKey(name)
	if err != nil {
		return StoredState{}, err
	}

	stored, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (StoredState, error) {
		fetched, fetchErr := s.base.GetActiveByName(ctx, name)
		if fetchErr != nil {
			return StoredState{}, fetchErr
		}
		return cloneStoredState(fetched), nil
	})
	if err != nil {
		return StoredState{}, err
	}
	return cloneStoredState(stored), nil
}

func (s *CachedCredentialStateStore) RevokeActive(ctx context.Context, name string, reason string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential state store is not configured")
	}
	if err := s.base.RevokeActive(ctx, name, reason); err != nil {
		return err
	}
	cacheKey, err := CredentialStateCacheKey(name)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func cloneStoredState(stored StoredState) StoredState {
	cloned := stored
	if stored.State != nil {
		state := make(map[string]any, len(stored.State))
		for key, value := range stored.State {
			state[key] = value
		}
		cloned.State = state
	}
	if stored.ExpiresAt != nil {
		value := stored.ExpiresAt.UTC()
		cloned.ExpiresAt = &value
	}
	return cloned
}

var _ StateReader = (*CachedCredentialStateStore)(nil)
var _ StateReader = (*CredentialStateStore)(nil)
