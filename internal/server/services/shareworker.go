package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/picshare/internal/logging"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/repomanager"
)

const shareWorkerBatchSize = 50

// ShareWorker drains the share task queue in the background. Each task
// records one "account X shared something with account Y" fact; tasks are
// enqueued in the same transaction as the ACL write, so the worker is the
// only component that may see them.
type ShareWorker struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	accounts    *AccountService
	interval    time.Duration
	logger      logging.Logger
}

func NewShareWorker(db *sql.DB, m repomanager.RepositoryManager, accounts *AccountService, interval time.Duration, logger logging.Logger) *ShareWorker {
	return &ShareWorker{
		db:          db,
		repomanager: m,
		accounts:    accounts,
		interval:    interval,
		logger:      logger,
	}
}

// Run polls for due tasks until ctx is cancelled.
func (w *ShareWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error(ctx, "share worker pass failed", "error", err)
			}
		}
	}
}

// RunOnce processes a single batch of due tasks. A failing task is marked
// with an extra attempt and left for the next pass; the rest of the batch
// still runs.
func (w *ShareWorker) RunOnce(ctx context.Context) error {
	repo := w.repomanager.ShareTasks(w.db)

	tasks, err := repo.DueBatch(ctx, shareWorkerBatchSize)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if err := w.accounts.RecordShare(ctx, task.SharedWith, task.Sharing); err != nil {
			w.logger.Error(ctx, "recording share failed", "task", task.ID.String(), "error", err)
			if err := repo.Fail(ctx, task.ID); err != nil {
				return err
			}
			continue
		}
		if err := repo.Complete(ctx, task.ID); err != nil {
			return err
		}
		w.logger.Debug(ctx, "share recorded", "shared_with", task.SharedWith, "sharing", task.Sharing)
	}
	return nil
}
