package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/models"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/photos"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// User-facing error details for photo operations.
const (
	MsgPhotoForbidden = "You do not have access to this photo."
	MsgKeyWrongFormat = "Key must be a string value of integer."
	MsgMimeTypeNeeded = "Photo MIME type must be described."
	MsgPhotoNotFound  = "Photo not found."
	MsgPhotoNeeded    = "Base64 Photo contents required."
	MsgTitleNeeded    = "Photo must have a title."
	MsgBadACLUserIDs  = "ACL user IDs must be non-empty strings."
	MsgOwnerNotFound  = "Account for owner ID not found."
	MsgBadPageToken   = "Invalid pageToken."
)

// OwnerMe is the sentinel owner filter meaning "the caller's own photos".
const OwnerMe = "me"

// PhotoInput carries the mutable photo fields of a create or full-update
// request. Owner and ACL never travel in it.
type PhotoInput struct {
	Title       string
	Description string
	Content     []byte
	ContentType string
}

// PhotoPatch carries the optional fields of a partial update; nil means
// "leave unchanged".
type PhotoPatch struct {
	Title       *string
	Description *string
}

// ListQuery is the structured form of photo.list request parameters.
type ListQuery struct {
	UpdatedAfter *time.Time
	Title        *string
	Tags         []string
	OwnerID      string // empty or OwnerMe for the caller's own photos
	Limit        int
	PageToken    string
}

// PhotoView pairs a photo with its caller-dependent read-time flag.
type PhotoView struct {
	Photo  *models.Photo
	IsMine bool
}

// ListResult is one page of a photo listing.
type ListResult struct {
	Photos        []PhotoView
	NextPageToken string
}

// PhotoService implements the photo entity lifecycle. Every operation
// resolves the caller through the authorization gate before touching
// storage.
type PhotoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	authz       *AuthzService
	accounts    *AccountService

	defaultPageSize int
	maxPageSize     int
}

func NewPhotoService(db *sql.DB, m repomanager.RepositoryManager, authz *AuthzService, accounts *AccountService, defaultPageSize, maxPageSize int) *PhotoService {
	return &PhotoService{
		db:              db,
		repomanager:     m,
		authz:           authz,
		accounts:        accounts,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func validatePhotoInput(in PhotoInput) error {
	if in.Title == "" {
		return fmt.Errorf("%w: %s", common.ErrorValidation, MsgTitleNeeded)
	}
	if len(in.Content) == 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, MsgPhotoNeeded)
	}
	if in.ContentType == "" {
		return fmt.Errorf("%w: %s", common.ErrorValidation, MsgMimeTypeNeeded)
	}
	return nil
}

func parseKey(key string) (int64, error) {
	id, err := models.ParseKey(key)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", common.ErrorValidation, MsgKeyWrongFormat)
	}
	return id, nil
}

// Create stores a new photo owned by the caller. The owner comes from the
// resolved identity, never from the payload.
func (s *PhotoService) Create(ctx context.Context, in PhotoInput) (*models.Photo, error) {
	account, err := s.authz.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validatePhotoInput(in); err != nil {
		return nil, err
	}

	photo := &models.Photo{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		ContentType: in.ContentType,
		Owner:       *account.Identity,
	}
	return s.repomanager.Photos(s.db).Create(ctx, photo)
}

// Read returns the photo when the caller is its owner or in its ACL.
func (s *PhotoService) Read(ctx context.Context, key string) (*PhotoView, error) {
	id, err := parseKey(key)
	if err != nil {
		return nil, err
	}

	account, err := s.authz.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}

	photo, err := s.repomanager.Photos(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err)
	}

	view := &PhotoView{Photo: photo}
	if photo.Owner.Equal(*account.Identity) {
		view.IsMine = true
	} else if !photo.InACL(account.SubjectID) {
		return nil, fmt.Errorf("%w: %s", common.ErrorForbidden, MsgPhotoForbidden)
	}
	return view, nil
}

// Delete removes the photo. Owner only.
func (s *PhotoService) Delete(ctx context.Context, key string) error {
	id, err := parseKey(key)
	if err != nil {
		return err
	}

	repo := s.repomanager.Photos(s.db)
	photo, err := repo.GetByID(ctx, id)
	if err != nil {
		return s.notFoundOr(err)
	}
	if _, err := s.authz.RequireOwner(ctx, photo); err != nil {
		return err
	}
	return repo.Delete(ctx, id)
}

// Patch applies the present fields only. Owner only.
func (s *PhotoService) Patch(ctx context.Context, key string, patch PhotoPatch) (*models.Photo, error) {
	id, err := parseKey(key)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Photos(s.db)
	photo, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err)
	}
	if _, err := s.authz.RequireOwner(ctx, photo); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		photo.Title = *patch.Title
	}
	if patch.Description != nil {
		photo.Description = *patch.Description
	}

	if err := repo.Update(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// Replace performs a full update: all create-time validations run again
// and every mutable field is overwritten, while owner and ACL are
// preserved no matter what the payload carried.
func (s *PhotoService) Replace(ctx context.Context, key string, in PhotoInput) (*models.Photo, error) {
	id, err := parseKey(key)
	if err != nil {
		return nil, err
	}

	var photo *models.Photo
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Photos(tx)

		existing, err := repo.GetByID(ctx, id)
		if err != nil {
			return s.notFoundOr(err)
		}
		if _, err := s.authz.RequireOwner(ctx, existing); err != nil {
			return err
		}
		if err := validatePhotoInput(in); err != nil {
			return err
		}

		existing.Title = in.Title
		existing.Description = in.Description
		existing.Content = in.Content
		existing.ContentType = in.ContentType

		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		photo = existing
		return nil
	}); err != nil {
		return nil, err
	}
	return photo, nil
}

// List returns one page of photos matching the query. The owner filter is
// always applied: "me" (or empty) lists the caller's own photos, anyone
// else's ID lists only the photos they shared with the caller.
func (s *PhotoService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	account, err := s.authz.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}

	filter := photos.ListFilter{
		UpdatedAfter: q.UpdatedAfter,
		Title:        q.Title,
	}

	if q.OwnerID == "" || q.OwnerID == OwnerMe {
		filter.Owner = *account.Identity
	} else {
		target := s.accounts.GetActive(ctx, q.OwnerID)
		if target == nil {
			return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, MsgOwnerNotFound)
		}
		filter.Owner = *target.Identity
		filter.ACLSubjectID = account.SubjectID
	}

	// A tag that extraction can never produce matches nothing; short-circuit
	// instead of handing arbitrary bytes to the regex filter.
	for _, tag := range q.Tags {
		if !models.ValidTag(tag) {
			return &ListResult{Photos: []PhotoView{}}, nil
		}
	}
	filter.Tags = q.Tags

	filter.Limit = q.Limit
	if filter.Limit <= 0 {
		filter.Limit = s.defaultPageSize
	}
	if filter.Limit > s.maxPageSize {
		filter.Limit = s.maxPageSize
	}

	if q.PageToken != "" {
		cursor, err := photos.DecodeCursor(q.PageToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", common.ErrorValidation, MsgBadPageToken)
		}
		filter.Cursor = cursor
	}

	items, err := s.repomanager.Photos(s.db).List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Photos: make([]PhotoView, 0, len(items))}
	for _, p := range items {
		result.Photos = append(result.Photos, PhotoView{
			Photo:  p,
			IsMine: p.Owner.Equal(*account.Identity),
		})
	}

	if len(items) == filter.Limit && filter.Limit > 0 {
		last := items[len(items)-1]
		result.NextPageToken = photos.Cursor{Updated: last.Updated, ID: last.ID}.Encode()
	}
	return result, nil
}

// AddACL grants read access to the given subject IDs. Owner only. New
// entries are appended set-like, and for each genuinely new entry a share
// task is enqueued in the same transaction, so the deferred membership
// recording happens only if the photo write commits.
func (s *PhotoService) AddACL(ctx context.Context, key string, subjectIDs []string) (*models.Photo, error) {
	for _, id := range subjectIDs {
		if id == "" {
			return nil, fmt.Errorf("%w: %s", common.ErrorValidation, MsgBadACLUserIDs)
		}
	}

	id, err := parseKey(key)
	if err != nil {
		return nil, err
	}

	var photo *models.Photo
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Photos(tx)

		p, err := repo.GetByID(ctx, id)
		if err != nil {
			return s.notFoundOr(err)
		}
		account, err := s.authz.RequireOwner(ctx, p)
		if err != nil {
			return err
		}

		tasks := s.repomanager.ShareTasks(tx)
		seen := map[string]bool{}
		for _, subjectID := range subjectIDs {
			if seen[subjectID] {
				continue
			}
			seen[subjectID] = true

			added, err := repo.AddACLEntry(ctx, p.ID, subjectID)
			if err != nil {
				return err
			}
			if !added {
				continue
			}
			p.ACL = append(p.ACL, subjectID)
			if err := tasks.Enqueue(ctx, &models.ShareTask{
				ID:         uuid.New(),
				SharedWith: subjectID,
				Sharing:    account.SubjectID,
			}); err != nil {
				return err
			}
		}

		if err := repo.Touch(ctx, p.ID); err != nil {
			return err
		}
		photo = p
		return nil
	}); err != nil {
		return nil, err
	}
	return photo, nil
}

// notFoundOr maps a repository NotFound to the photo-specific message and
// passes anything else through.
func (s *PhotoService) notFoundOr(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: %s", common.ErrorNotFound, MsgPhotoNotFound)
	}
	return err
}
