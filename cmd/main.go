package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cliniqa/clinicsign-server/internal/api/http/reqctx"
	"github.com/cliniqa/clinicsign-server/internal/api/http/router"
	httpserver "github.com/cliniqa/clinicsign-server/internal/api/http/server"
	"github.com/cliniqa/clinicsign-server/internal/config"
	"github.com/cliniqa/clinicsign-server/internal/logger"
	"github.com/cliniqa/clinicsign-server/internal/model"
	"github.com/cliniqa/clinicsign-server/internal/repository/blob"
	"github.com/cliniqa/clinicsign-server/internal/repository/postgres"
	"github.com/cliniqa/clinicsign-server/internal/server"
	"github.com/cliniqa/clinicsign-server/internal/service"
	storage "github.com/cliniqa/clinicsign-server/internal/storage/minio"
	"github.com/cliniqa/clinicsign-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, logger)
	authService := service.NewAuth(userRepo, tokenService, logger)

	signatureStore, err := newSignatureStore(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatal("failed to initialize signature store", "error", err)
	}
	signatureService := service.NewSignature(signatureStore, logger)

	ctxMgr := reqctx.NewManager()
	r := router.New(authService, signatureService, tokenService, ctxMgr, cfg.Guard.PublicPrefixes, logger)
	httpServer := httpserver.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newSignatureStore picks the backend. Postgres enforces one signature per
// owner and type with a composite unique index; the blob backend keeps a
// whole JSON collection per owner in object storage.
func newSignatureStore(ctx context.Context, cfg *config.Config, db *postgres.Connection, logger *logger.Logger) (model.SignatureStore, error) {
	switch cfg.Signatures.Backend {
	case "postgres":
		return postgres.NewSignatureRepository(db), nil
	case "blob":
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage client: %w", err)
		}
		return blob.NewSignatureRepository(storageClient, logger), nil
	default:
		return nil, fmt.Errorf("unknown signatures backend: %q", cfg.Signatures.Backend)
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
