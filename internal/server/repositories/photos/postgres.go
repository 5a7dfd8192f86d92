package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/models"
)

// PostgresRepository implements photo storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	query :=
		`INSERT INTO photos (title, description, content, content_type, owner_email, owner_uid)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		photo.Title, photo.Description, photo.Content, photo.ContentType,
		photo.Owner.Email, photo.Owner.UserID).Scan(&photo.ID, &photo.Updated)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	photo.FromStore = true
	return photo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	query :=
		`SELECT id, title, description, content, content_type, owner_email, owner_uid, updated_at
		 FROM photos
		 WHERE id = $1
		 `

	photo := &models.Photo{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&photo.ID, &photo.Title, &photo.Description, &photo.Content, &photo.ContentType,
		&photo.Owner.Email, &photo.Owner.UserID, &photo.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	acl, err := r.acl(ctx, id)
	if err != nil {
		return nil, err
	}
	photo.ACL = acl
	photo.FromStore = true

	return photo, nil
}

func (r *PostgresRepository) acl(ctx context.Context, photoID int64) ([]string, error) {
	query :=
		`SELECT subject_id FROM photo_acl
		 WHERE photo_id = $1
		 ORDER BY subject_id
		 `

	rows, err := r.db.QueryContext(ctx, query, photoID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, photo *models.Photo) error {
	query :=
		`UPDATE photos
		 SET title = $2, description = $3, content = $4, content_type = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		photo.ID, photo.Title, photo.Description, photo.Content, photo.ContentType).Scan(&photo.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id int64) error {
	query :=
		`UPDATE photos SET updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM photos WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) AddACLEntry(ctx context.Context, photoID int64, subjectID string) (bool, error) {
	query :=
		`INSERT INTO photo_acl (photo_id, subject_id)
		 VALUES ($1, $2)
		 ON CONFLICT (photo_id, subject_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, photoID, subjectID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// List executes the filter as one ordered, keyset-paginated query so that
// pages stay consistent with every filter applied, tags included.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*models.Photo, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	// Owner identity matching mirrors models.Identity.Equal: the provider
	// user ID is authoritative when both sides have one, email otherwise.
	if filter.Owner.UserID != "" {
		uid := arg(filter.Owner.UserID)
		email := arg(filter.Owner.Email)
		conds = append(conds, fmt.Sprintf(
			"((p.owner_uid <> '' AND p.owner_uid = %s) OR (p.owner_uid = '' AND p.owner_email = %s))", uid, email))
	} else {
		conds = append(conds, fmt.Sprintf("p.owner_email = %s", arg(filter.Owner.Email)))
	}

	if filter.ACLSubjectID != "" {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM photo_acl a WHERE a.photo_id = p.id AND a.subject_id = %s)", arg(filter.ACLSubjectID)))
	}

	if filter.UpdatedAfter != nil {
		conds = append(conds, fmt.Sprintf("p.updated_at >= %s", arg(*filter.UpdatedAfter)))
	}

	if filter.Title != nil {
		conds = append(conds, fmt.Sprintf("p.title = %s", arg(*filter.Title)))
	}

	for _, tag := range filter.Tags {
		// Tag values are validated upstream to [A-Za-z0-9_]+, so they are
		// safe to embed in a POSIX regex.
		conds = append(conds, fmt.Sprintf("p.description ~ %s", arg("(^|[[:space:]])#"+tag+"([[:space:]]|$)")))
	}

	if filter.Cursor != nil {
		cu := arg(filter.Cursor.Updated)
		cid := arg(filter.Cursor.ID)
		conds = append(conds, fmt.Sprintf("(p.updated_at, p.id) > (%s, %s)", cu, cid))
	}

	query := `SELECT p.id, p.title, p.description, p.content, p.content_type, p.owner_email, p.owner_uid, p.updated_at
		 FROM photos p
		 WHERE ` + strings.Join(conds, "\n		   AND ") + `
		 ORDER BY p.updated_at, p.id`

	if filter.Limit > 0 {
		query += fmt.Sprintf("\n		 LIMIT %s", arg(filter.Limit))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select photos: %w", err)
	}
	defer rows.Close()

	var result []*models.Photo
	for rows.Next() {
		item := &models.Photo{FromStore: true}
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Description, &item.Content, &item.ContentType,
			&item.Owner.Email, &item.Owner.UserID, &item.Updated,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
