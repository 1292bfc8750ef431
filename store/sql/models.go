package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type credentialStateRecord struct {
	bun.BaseModel `bun:"table:xero_credential_states,alias:xcs"`

	ID               string     `bun:"id,pk"`
	Name             string     `bun:"name,notnull"`
	Mode             string     `bun:"mode,notnull"`
	Version          int        `bun:"version,notnull"`
	Payload          []byte     `bun:"payload,notnull"`
	PayloadFormat    string     `bun:"payload_format,notnull"`
	PayloadVersion   int        `bun:"payload_version,notnull"`
	Status           string     `bun:"status,notnull"`
	RevocationReason string     `bun:"revocation_reason,notnull"`
	ExpiresAt        *time.Time `bun:"expires_at,nullzero"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
