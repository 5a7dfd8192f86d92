package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareTask is one transactional-outbox row recording that a sharing user
// must be added to the shared-with user's ACL membership. Rows are written
// in the same transaction as the photo ACL update, so they exist only if
// that write committed, and are drained by the share worker at-least-once.
type ShareTask struct {
	ID         uuid.UUID
	SharedWith string // subject ID being granted access
	Sharing    string // subject ID of the photo owner
	Attempts   int
	CreatedAt  time.Time
}
