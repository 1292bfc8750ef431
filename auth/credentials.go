package auth

import (
	"context"

	"github.com/goliatone/go-xero/core"
)

// Credentials is the surface every credential variant shares. Verbs that a
// variant does not support return an explanatory error rather than being
// absent, so callers can hold any variant behind this one type.
type Credentials interface {
	core.SigningContextProvider

	Initiate(ctx context.Context) error
	AuthorizationURL() (string, error)
	Verify(ctx context.Context, verifier string) error
	Refresh(ctx context.Context) error
	APIURL() string
	State() core.CredentialState
}

var (
	_ Credentials = (*PublicCredentials)(nil)
	_ Credentials = (*PrivateCredentials)(nil)
	_ Credentials = (*PartnerCredentials)(nil)
)
