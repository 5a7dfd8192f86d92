package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/auth"
	"github.com/dmitrijs2005/picshare/internal/server/models"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/repomanager"
)

// AccountService implements the account lifecycle: sign-up with
// get-or-create semantics, best-effort lookups, and the idempotent
// recording of "who shared with me" membership.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    SubjectResolver
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, r SubjectResolver) *AccountService {
	return &AccountService{db: db, repomanager: m, resolver: r}
}

// Get returns the account for the subject ID, or nil. Backend failures are
// swallowed: these lookups only enrich authorization decisions and an
// unreachable store must not turn into a request error.
func (s *AccountService) Get(ctx context.Context, subjectID string) *models.Account {
	account, err := s.repomanager.Accounts(s.db).Get(ctx, subjectID)
	if err != nil {
		return nil
	}
	return account
}

// GetActive is Get restricted to signed-up accounts; a placeholder created
// by an ACL grant does not count.
func (s *AccountService) GetActive(ctx context.Context, subjectID string) *models.Account {
	account := s.Get(ctx, subjectID)
	if account == nil || account.Placeholder() {
		return nil
	}
	return account
}

// SignUp creates or returns the caller's account.
//
// The whole decision runs in one transaction: create a fresh account,
// claim an existing placeholder by recording the caller's identity, return
// the account unchanged when the identity already matches, and reject with
// Forbidden when the subject ID is bound to a different identity (token
// forgery or a platform inconsistency; either way the stored identity
// never changes).
//
// The insert is a set-insert on the subject ID, so two concurrent
// first-time sign-ups never trip the primary key: the loser re-reads the
// winner's row and both calls return the same account.
func (s *AccountService) SignUp(ctx context.Context) (*models.Account, error) {
	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrorUnauthorized, MsgInvalidToken)
	}

	subjectID, ok := s.resolver.SubjectID(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrorForbidden, MsgNoSubjectID)
	}

	var account *models.Account
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		existing, err := repo.Get(ctx, subjectID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		if existing == nil {
			identity := caller.Identity
			fresh := &models.Account{SubjectID: subjectID, Identity: &identity}
			created, err := repo.Create(ctx, fresh)
			if err != nil {
				return err
			}
			if created {
				account = fresh
				return nil
			}
			// Lost the insert to a concurrent sign-up or share grant;
			// re-read and fall through to the existing-row handling.
			if existing, err = repo.Get(ctx, subjectID); err != nil {
				return err
			}
		}

		if existing.Placeholder() {
			// The subject was added to someone's ACL before its owner
			// signed up; claim the stub.
			if err := repo.SetIdentity(ctx, subjectID, caller.Identity); err != nil {
				return err
			}
			identity := caller.Identity
			existing.Identity = &identity
		} else if !existing.Identity.Equal(caller.Identity) {
			return fmt.Errorf("%w: %s", common.ErrorForbidden, MsgBadUser)
		}
		account = existing
		return nil
	}); err != nil {
		return nil, err
	}

	return account, nil
}

// RecordShare notes that sharing shared a photo with sharedWith, creating
// a placeholder account for sharedWith if none exists. Both writes are
// set-inserts, so replaying the operation is harmless.
func (s *AccountService) RecordShare(ctx context.Context, sharedWith, sharing string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if err := repo.CreatePlaceholder(ctx, sharedWith); err != nil {
			return err
		}
		return repo.AddMembership(ctx, sharedWith, sharing)
	})
}
