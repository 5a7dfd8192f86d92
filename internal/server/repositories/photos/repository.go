// Package photos provides PostgreSQL-backed persistence for photo
// entities, their ACLs, and the filtered, keyset-paginated listing query.
package photos

import (
	"context"
	"time"

	"github.com/dmitrijs2005/picshare/internal/server/models"
)

// ListFilter is the structured query produced from list request
// parameters. It is built explicitly by the API layer; no field assignment
// ever mutates hidden query state.
type ListFilter struct {
	// Owner restricts results to photos owned by this identity. Always set.
	Owner models.Identity

	// ACLSubjectID, when non-empty, restricts results to photos whose ACL
	// contains this subject. Set when listing someone else's photos.
	ACLSubjectID string

	// UpdatedAfter keeps photos updated at or after this instant.
	UpdatedAfter *time.Time

	// Title, when non-nil, filters on exact title.
	Title *string

	// Tags keeps photos whose description carries every listed hashtag.
	Tags []string

	// Limit caps the page size; Cursor resumes after a previous page.
	Limit  int
	Cursor *Cursor
}

type Repository interface {
	// Create inserts the photo and returns it with the assigned ID and
	// write timestamp.
	Create(ctx context.Context, photo *models.Photo) (*models.Photo, error)

	// GetByID returns the photo with its ACL loaded, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Photo, error)

	// Update replaces all mutable fields and refreshes the write timestamp.
	// Owner columns are never touched.
	Update(ctx context.Context, photo *models.Photo) error

	// Touch refreshes the write timestamp only.
	Touch(ctx context.Context, id int64) error

	// Delete removes the photo (the ACL rows cascade).
	Delete(ctx context.Context, id int64) error

	// AddACLEntry grants subjectID read access. Reports whether the entry
	// was actually new.
	AddACLEntry(ctx context.Context, photoID int64, subjectID string) (bool, error)

	// List returns photos matching the filter ordered by updated_at
	// ascending, ID ascending on ties.
	List(ctx context.Context, filter ListFilter) ([]*models.Photo, error)
}
