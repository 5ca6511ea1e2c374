package identity

import (
	"context"
	"errors"
)

// ErrIdentityNotFound signals that the identity provider has no record for
// the given id. Deletion treats this as idempotent success: the desired end
// state already holds.
var ErrIdentityNotFound = errors.New("identity not found")

// Attributes are arbitrary metadata stored alongside the credential.
type Attributes map[string]string

// Store is the hosted identity provider as the portal sees it. The provider
// owns credentials and email confirmation; principal profiles live in the
// relational store under the same id.
type Store interface {
	CreateIdentity(ctx context.Context, email, credential string, attrs Attributes) (string, error)
	DeleteIdentity(ctx context.Context, id string) error
	ConfirmIdentity(ctx context.Context, id string) error
}
