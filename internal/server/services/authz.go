// Package services contains the server-side business logic of picshare:
// the authorization gate, account lifecycle, photo operations, and the
// deferred share-recording worker.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/dmitrijs2005/picshare/internal/server/auth"
	"github.com/dmitrijs2005/picshare/internal/server/models"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/repomanager"
)

// User-facing error details, kept stable for API clients.
const (
	MsgInvalidToken = "Invalid token."
	MsgNoSubjectID  = "Insufficient Permission."
	MsgNoAccount    = "You don't have a picshare account."
	MsgBadUser      = "Account discrepancy."
)

// SubjectResolver yields the identity provider subject ID of the current
// caller. Satisfied by auth.Resolver.
type SubjectResolver interface {
	SubjectID(ctx context.Context) (string, bool)
}

// AuthzService answers "who is the caller" and "may the caller act on this
// photo". It composes the subject resolver with the account store.
type AuthzService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    SubjectResolver
}

func NewAuthzService(db *sql.DB, m repomanager.RepositoryManager, r SubjectResolver) *AuthzService {
	return &AuthzService{db: db, repomanager: m, resolver: r}
}

// RequireCaller resolves the current caller to a signed-up account.
// It fails Unauthorized without a transport-authenticated caller,
// Forbidden when no subject ID is resolvable, and Forbidden when no active
// account exists for it (placeholders must sign up first).
func (s *AuthzService) RequireCaller(ctx context.Context) (*models.Account, error) {
	if _, ok := auth.CallerFromContext(ctx); !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrorUnauthorized, MsgInvalidToken)
	}

	subjectID, ok := s.resolver.SubjectID(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrorForbidden, MsgNoSubjectID)
	}

	account := s.activeAccount(ctx, subjectID)
	if account == nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorForbidden, MsgNoAccount)
	}
	return account, nil
}

// RequireOwner makes sure the caller has an account and owns the photo.
// The photo must have come from storage; ownership of unpersisted data is
// meaningless and reported as NotFound.
func (s *AuthzService) RequireOwner(ctx context.Context, photo *models.Photo) (*models.Account, error) {
	if photo == nil || !photo.FromStore {
		return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, MsgPhotoNotFound)
	}

	account, err := s.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}

	if !photo.Owner.Equal(*account.Identity) {
		return nil, fmt.Errorf("%w: %s", common.ErrorForbidden, MsgPhotoForbidden)
	}
	return account, nil
}

// activeAccount is a best-effort read: backend failure and placeholder
// rows both count as "no account". The lookup only gates authorization,
// so degrading to absent is the designed behavior.
func (s *AuthzService) activeAccount(ctx context.Context, subjectID string) *models.Account {
	account, err := s.repomanager.Accounts(s.db).Get(ctx, subjectID)
	if err != nil || account.Placeholder() {
		return nil
	}
	return account
}
