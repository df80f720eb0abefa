// Package http exposes the pipelines over HTTP: the camera upload endpoint,
// the retrieval endpoints, and account signup/login.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pradeepp09/SITE-server/internal/logging"
	"github.com/Pradeepp09/SITE-server/internal/server/models"
	"github.com/Pradeepp09/SITE-server/internal/server/services"
)

// maxUploadBytes bounds a single raw frame upload.
const maxUploadBytes = 10 << 20 // 10mb

// AccountDirectory is the slice of the account service the handlers use.
type AccountDirectory interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	LookupAny(ctx context.Context) (*models.Account, error)
	ResolveDeviceToken(ctx context.Context, token string) (*models.Account, error)
}

// MediaPipeline is the slice of the media service the handlers use.
type MediaPipeline interface {
	Ingest(ctx context.Context, payload []byte, account *models.Account) (string, error)
	Retrieve(ctx context.Context, email string) ([]services.RetrievedItem, error)
	ListDecrypted(ctx context.Context, email string) ([]services.DecryptedItem, error)
}

type Server struct {
	address  string
	accounts AccountDirectory
	media    MediaPipeline
	logger   logging.Logger
}

func NewServer(address string, l logging.Logger, as AccountDirectory, ms MediaPipeline) *Server {
	return &Server{
		address:  address,
		logger:   l.With("module", "http_server"),
		accounts: as,
		media:    ms,
	}
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/signup", s.signup)
	r.POST("/login", s.login)
	r.POST("/upload", s.upload)
	r.POST("/decrypt-images", s.decryptImages)
	r.POST("/get-decrypted-images", s.getDecryptedImages)

	return r
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
