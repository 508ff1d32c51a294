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
	goredis "github.com/redis/go-redis/v9"

	grpcctx "github.com/dtroode/campusmarket-server/internal/api/grpc/context"
	grpcRouter "github.com/dtroode/campusmarket-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/campusmarket-server/internal/api/grpc/server"
	httpRouter "github.com/dtroode/campusmarket-server/internal/api/http/router"
	httpServer "github.com/dtroode/campusmarket-server/internal/api/http/server"
	"github.com/dtroode/campusmarket-server/internal/config"
	"github.com/dtroode/campusmarket-server/internal/ledger"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/mailer"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/password"
	"github.com/dtroode/campusmarket-server/internal/repository/postgres"
	"github.com/dtroode/campusmarket-server/internal/repository/redis"
	"github.com/dtroode/campusmarket-server/internal/server"
	"github.com/dtroode/campusmarket-server/internal/service"
	storage "github.com/dtroode/campusmarket-server/internal/storage/minio"
	"github.com/dtroode/campusmarket-server/internal/token"
	"github.com/dtroode/campusmarket-server/internal/university"
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
	logger := logger.NewWithFormat(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	signingKey, err := cfg.SigningKey()
	if err != nil {
		logger.Fatal("invalid signing key", "error", err)
	}
	tokenManager, err := token.NewJWT(signingKey, token.WithTTL(cfg.JWT.TTL))
	if err != nil {
		logger.Fatal("failed to initialize token issuer", "error", err)
	}

	universities, err := university.LoadFile(cfg.UniversityFile)
	if err != nil {
		logger.Fatal("failed to load universities", "error", err)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	verificationStore, resetStore, closeCodeStores, err := newCodeStores(ctx, cfg, db)
	if err != nil {
		logger.Fatal("failed to initialize code stores", "error", err, "backend", cfg.Ledger.Backend)
	}
	defer closeCodeStores()

	verificationPolicy := ledger.VerificationPolicy()
	verificationPolicy.TTL = cfg.Ledger.VerificationTTL
	verificationPolicy.Throttle = cfg.Ledger.ResendThrottle
	resetPolicy := ledger.PasswordResetPolicy()
	resetPolicy.TTL = cfg.Ledger.ResetTTL
	resetPolicy.Throttle = cfg.Ledger.ResendThrottle

	verificationLedger := ledger.New(verificationStore, verificationPolicy, logger)
	resetLedger := ledger.New(resetStore, resetPolicy, logger)

	mail, closeMail, err := mailer.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize mailer", "error", err, "backend", cfg.Mail.Backend)
	}
	defer closeMail()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	listingRepo := postgres.NewListingRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	tokenService := service.NewTokenService(tokenManager, logger)
	authService := service.NewAuth(
		userRepo,
		universities,
		verificationLedger,
		resetLedger,
		tokenService,
		password.NewHasher(0),
		mail,
		service.AuthOptions{
			AllowedSuffixes: cfg.Signup.AllowedSuffixes,
			FrontendURL:     cfg.FrontendURL,
		},
		logger,
	)
	userService := service.NewUser(userRepo, logger)
	listingService := service.NewListing(listingRepo, storageClient, logger)
	messageService := service.NewMessage(messageRepo, userRepo, logger)

	httpHandler := httpRouter.New(authService, userService, listingService, messageService, universities, tokenService,
		httpRouter.Config{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		}, logger).Register()
	grpcHandler := grpcRouter.New(tokenService, grpcctx.NewManager(), logger).Register()

	servers := []serverEntry{
		{
			server: httpServer.NewHTTPServer(httpHandler, fmt.Sprintf(":%s", cfg.HTTP.Port)),
			layer:  securityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName),
		},
		{
			server: grpcServer.NewGRPCServer(grpcHandler, fmt.Sprintf(":%s", cfg.GRPC.Port)),
			layer:  securityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName),
		},
	}

	var wg sync.WaitGroup
	for _, e := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(e.server, e.layer)
	}

	sweeper := ledger.NewSweeper(cfg.Ledger.SweepInterval, logger, verificationLedger, resetLedger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, e := range servers {
		if err := e.server.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", e.server.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

type serverEntry struct {
	server model.Server
	layer  model.SecurityLayer
}

func securityLayer(enableHTTPS bool, certFile, keyFile string) model.SecurityLayer {
	if enableHTTPS {
		return server.NewTLSListener(certFile, keyFile)
	}
	return server.NewPlainListener()
}

// newCodeStores builds the verification and reset code stores for the
// configured ledger backend.
func newCodeStores(ctx context.Context, cfg *config.Config, db *postgres.Connection) (model.CodeStore, model.CodeStore, func(), error) {
	switch cfg.Ledger.Backend {
	case "", "postgres":
		verification, err := postgres.NewCodeRepository(db, model.CodeKindVerification)
		if err != nil {
			return nil, nil, nil, err
		}
		reset, err := postgres.NewCodeRepository(db, model.CodeKindPasswordReset)
		if err != nil {
			return nil, nil, nil, err
		}
		return verification, reset, func() {}, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		closeFn := func() { _ = client.Close() }
		return redis.NewCodeStore(client, cfg.Redis.KeyPrefix, model.CodeKindVerification),
			redis.NewCodeStore(client, cfg.Redis.KeyPrefix, model.CodeKindPasswordReset),
			closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
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
