// Package sharetasks provides the transactional outbox for deferred
// ACL-membership recording. Rows are enqueued inside the transaction that
// updates a photo's ACL, so they exist only if that write committed, and a
// background worker drains them at-least-once.
package sharetasks

import (
	"context"

	"github.com/dmitrijs2005/picshare/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	// Enqueue inserts the task row within the caller's transaction.
	Enqueue(ctx context.Context, task *models.ShareTask) error

	// DueBatch returns up to limit tasks, oldest first.
	DueBatch(ctx context.Context, limit int) ([]*models.ShareTask, error)

	// Complete removes a processed task.
	Complete(ctx context.Context, id uuid.UUID) error

	// Fail bumps the attempt counter; the task stays due for retry.
	Fail(ctx context.Context, id uuid.UUID) error
}
