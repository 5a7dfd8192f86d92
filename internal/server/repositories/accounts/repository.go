// Package accounts provides PostgreSQL-backed persistence for picshare
// user accounts and their ACL-membership reverse index.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/picshare/internal/server/models"
)

type Repository interface {
	// Get returns the account with its ACL membership loaded, or
	// common.ErrorNotFound.
	Get(ctx context.Context, subjectID string) (*models.Account, error)

	// Create inserts a new account and reports whether a row was
	// written; false means the subject already existed, such as when a
	// concurrent sign-up or share grant won the insert. A nil identity
	// inserts a placeholder.
	Create(ctx context.Context, account *models.Account) (bool, error)

	// CreatePlaceholder inserts an identity-less account row if none
	// exists yet; an existing row is left untouched.
	CreatePlaceholder(ctx context.Context, subjectID string) error

	// SetIdentity claims an account by recording its owner's identity.
	SetIdentity(ctx context.Context, subjectID string, identity models.Identity) error

	// AddMembership records that sharingSubjectID shared a photo with
	// subjectID. Inserting an existing pair is a no-op.
	AddMembership(ctx context.Context, subjectID, sharingSubjectID string) error
}
