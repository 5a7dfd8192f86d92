package sharetasks

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements the outbox over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Enqueue(ctx context.Context, task *models.ShareTask) error {
	query :=
		`INSERT INTO share_tasks (id, shared_with, sharing)
		 VALUES ($1, $2, $3)
		 `

	if _, err := r.db.ExecContext(ctx, query, task.ID, task.SharedWith, task.Sharing); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DueBatch(ctx context.Context, limit int) ([]*models.ShareTask, error) {
	query :=
		`SELECT id, shared_with, sharing, attempts, created_at FROM share_tasks
		 ORDER BY created_at, id
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select share tasks: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareTask
	for rows.Next() {
		var item models.ShareTask
		if err := rows.Scan(&item.ID, &item.SharedWith, &item.Sharing, &item.Attempts, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Complete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM share_tasks WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Fail(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE share_tasks SET attempts = attempts + 1 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
