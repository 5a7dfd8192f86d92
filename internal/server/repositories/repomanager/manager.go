// Package repomanager wires repository constructors together and exposes
// database migrations, so services can obtain repositories bound to either
// a plain connection or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/photos"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/sharetasks"
)

type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Photos(db dbx.DBTX) photos.Repository
	ShareTasks(db dbx.DBTX) sharetasks.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
