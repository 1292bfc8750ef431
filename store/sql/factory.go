package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/security"
	"github.com/uptrace/bun"
)

// RepositoryFactory wires the credential-state store against a bun database.
type RepositoryFactory struct {
	db     *bun.DB
	cipher security.SecretProvider

	credentialStateStore *CredentialStateStore
}

type FactoryOption func(*RepositoryFactory)

// WithSecretProvider encrypts credential payloads at rest with the given
// provider.
func WithSecretProvider(provider security.SecretProvider) FactoryOption {
	return func(factory *RepositoryFactory) {
		factory.cipher = provider
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(factory)
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.credentialStateStore != nil {
		return nil
	}
	return f.initStores()
}

func (f *RepositoryFactory) CredentialStateStore() *CredentialStateStore {
	if f == nil {
		return nil
	}
	return f.credentialStateStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	stateRepo := repository.NewRepository[*credentialStateRecord](f.db, credentialStateHandlers())
	if validator, ok := stateRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("sqlstore: invalid credential state repository wiring: %w", err)
		}
	}

	f.credentialStateStore = &CredentialStateStore{
		db:     f.db,
		repo:   stateRepo,
		codec:  core.JSONStateCodec{},
		cipher: f.cipher,
	}
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
