// Package server initializes and runs the picshare application server.
// It opens the database, runs migrations, wires services together, and
// starts the HTTP endpoint and the share-recording worker with graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/picshare/internal/logging"
	"github.com/dmitrijs2005/picshare/internal/server/auth"
	"github.com/dmitrijs2005/picshare/internal/server/config"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/picshare/internal/server/rest"
	"github.com/dmitrijs2005/picshare/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	accountService *services.AccountService
	photoService   *services.PhotoService
	shareWorker    *services.ShareWorker
	restServer     *rest.RestServer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	resolver := auth.Resolver{}
	authz := services.NewAuthzService(db, rm, resolver)
	accounts := services.NewAccountService(db, rm, resolver)
	photos := services.NewPhotoService(db, rm, authz, accounts, cfg.DefaultPageSize, cfg.MaxPageSize)
	worker := services.NewShareWorker(db, rm, accounts, cfg.ShareWorkerInterval, logger.With("module", "share_worker"))
	server := rest.NewRestServer(cfg, logger, accounts, photos)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		accountService: accounts,
		photoService:   photos,
		shareWorker:    worker,
		restServer:     server,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRestServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.restServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRestServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.shareWorker.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing db", "error", err)
	}
}
