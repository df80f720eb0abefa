// Package server initializes and runs the media server. It wires the
// database, the object store, and the pipelines, performs the one-time
// storage setup, handles graceful shutdown, and starts the HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Pradeepp09/SITE-server/internal/logging"
	"github.com/Pradeepp09/SITE-server/internal/server/config"
	hs "github.com/Pradeepp09/SITE-server/internal/server/http"
	"github.com/Pradeepp09/SITE-server/internal/server/services"
	"github.com/Pradeepp09/SITE-server/internal/server/shared/db"
	"github.com/Pradeepp09/SITE-server/internal/server/storage"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	store          storage.ObjectStore
	accountService *services.AccountService
	mediaService   *services.MediaService
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := storage.NewS3Client(c)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	as := services.NewAccountService(m.Accounts(), c, logger)
	ms := services.NewMediaService(as, m.Media(), store, logger)

	return &App{config: c, logger: logger, store: store, accountService: as, mediaService: ms}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := hs.NewServer(app.config.EndpointAddr, app.logger, app.accountService, app.mediaService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	// One-time storage setup; the pipelines must not become reachable
	// before the bucket exists.
	if err := app.store.EnsureBucket(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
