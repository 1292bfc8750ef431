package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/security"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	StateStatusActive  = "active"
	StateStatusRevoked = "revoked"
)

// StoredState is one persisted version of a credential-state snapshot.
type StoredState struct {
	ID               string
	Name             string
	Mode             string
	Version          int
	State            core.CredentialState
	Status           string
	RevocationReason string
	ExpiresAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SaveStateInput names the credential slot and carries the snapshot to
// persist. Name identifies the slot, Mode records which credential flavor
// produced the snapshot (public, private, partner).
type SaveStateInput struct {
	Name   string
	Mode   string
	State  core.CredentialState
	Status string
}

// CredentialStateStore persists credential-state snapshots as append-only
// versioned rows. Saving a new active version revokes the previous active
// row in the same transaction.
type CredentialStateStore struct {
	db     *bun.DB
	repo   repository.Repository[*credentialStateRecord]
	codec  core.CredentialStateCodec
	cipher security.SecretProvider
}

func (s *CredentialStateStore) SaveNewVersion(ctx context.Context, in SaveStateInput) (StoredState, error) {
	if s == nil || s.repo == nil || s.db == nil {
		return StoredState{}, fmt.Errorf("sqlstore: credential state store is not configured")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return StoredState{}, fmt.Errorf("sqlstore: credential name is required")
	}
	mode := strings.TrimSpace(in.Mode)
	if mode == "" {
		return StoredState{}, fmt.Errorf("sqlstore: credential mode is required")
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = StateStatusActive
	}

	payload, err := s.codec.Encode(in.State)
	if err != nil {
		return StoredState{}, err
	}
	if s.cipher != nil {
		payload, err = s.cipher.Encrypt(ctx, payload)
		if err != nil {
			return StoredState{}, err
		}
	}
	now := time.Now().UTC()

	var created StoredState
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		nextVersion, versionErr := s.nextVersion(ctx, tx, name)
		if versionErr != nil {
			return versionErr
		}

		if status == StateStatusActive {
			_, updateErr := tx.NewUpdate().
				Model((*credentialStateRecord)(nil)).
				Set("status = ?", StateStatusRevoked).
				Set("revocation_reason = ?", "rotated").
				Set("updated_at = ?", now).
				Where("name = ?", name).
				Where("status = ?", StateStatusActive).
				Exec(ctx)
			if updateErr != nil {
				return updateErr
			}
		}

		record := &credentialStateRecord{
			ID:             uuid.NewString(),
			Name:           name,
			Mode:           mode,
			Version:        nextVersion,
			Payload:        payload,
			PayloadFormat:  s.codec.Format(),
			PayloadVersion: s.codec.Version(),
			Status:         status,
			ExpiresAt:      stateExpiry(in.State),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		inserted, createErr := s.repo.CreateTx(ctx, tx, record)
		if createErr != nil {
			return createErr
		}
		domain, domainErr := s.toDomain(ctx, inserted)
		if domainErr != nil {
			return domainErr
		}
		created = domain
		return nil
	})
	if err != nil {
		return StoredState{}, err
	}

	return created, nil
}

func (s *CredentialStateStore) GetActiveByName(ctx context.Context, name string) (StoredState, error) {
	if s == nil || s.repo == nil {
		return StoredState{}, fmt.Errorf("sqlstore: credential state store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("name", "=", strings.TrimSpace(name)),
		repository.SelectBy("status", "=", StateStatusActive),
		repository.OrderBy("version DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return StoredState{}, err
	}
	if len(records) == 0 {
		return StoredState{}, fmt.Errorf("sqlstore: active credential state not found for %q", name)
	}
	return s.toDomain(ctx, records[0])
}

func (s *CredentialStateStore) RevokeActive(ctx context.Context, name string, reason string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential state store is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("sqlstore: credential name is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "revoked"
	}

	_, err := s.db.NewUpdate().
		Model((*credentialStateRecord)(nil)).
		Set("status = ?", StateStatusRevoked).
		Set("revocation_reason = ?", reason).
		Set("updated_at = ?", time.Now().UTC()).
		Where("name = ?", name).
		Where("status = ?", StateStatusActive).
		Exec(ctx)
	return err
}

func (s *CredentialStateStore) nextVersion(ctx context.Context, tx bun.Tx, name string) (int, error) {
	var maxVersion int
	if err := tx.NewSelect().
		Model((*credentialStateRecord)(nil)).
		ColumnExpr("COALESCE(MAX(version), 0)").
		Where("?TableAlias.name = ?", name).
		Scan(ctx, &maxVersion); err != nil {
		return 0, err
	}
	return maxVersion + 1, nil
}

func (s *CredentialStateStore) toDomain(ctx context.Context, record *credentialStateRecord) (StoredState, error) {
	if record == nil {
		return StoredState{}, fmt.Errorf("sqlstore: credential state record is nil")
	}
	payload := record.Payload
	// Rows written before encryption was enabled stay readable.
	if s.cipher != nil && security.IsSealed(payload) {
		opened, err := s.cipher.Decrypt(ctx, payload)
		if err != nil {
			return StoredState{}, err
		}
		payload = opened
	}
	state, err := s.codec.Decode(payload)
	if err != nil {
		return StoredState{}, err
	}
	return StoredState{
		ID:               record.ID,
		Name:             record.Name,
		Mode:             record.Mode,
		Version:          record.Version,
		State:            state,
		Status:           record.Status,
		RevocationReason: record.RevocationReason,
		ExpiresAt:        record.ExpiresAt,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}, nil
}

func stateExpiry(state core.CredentialState) *time.Time {
	ts, ok := state[core.StateExpiresAt].(time.Time)
	if !ok {
		return nil
	}
	value := ts.UTC()
	return &value
}
