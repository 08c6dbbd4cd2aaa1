package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"naijayield/internal/clients"
	"naijayield/internal/config"
	"naijayield/internal/repository"
	"naijayield/internal/service"
	"naijayield/internal/transport/rest"
	"naijayield/internal/transport/websocket"
	"naijayield/pkg/database/postgres"
	"naijayield/pkg/database/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	cfg := config.Load()
	if err := config.InitLogger(cfg.Log); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, dialect := mustInitDatabase(ctx, cfg)
	defer postgres.Close(db)

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, db, dialect); err != nil {
			zap.L().Fatal("migrate", zap.Error(err))
		}
	}

	// A nil cache disables caching and export tracking.
	var cache service.Cache
	var redisClient *clients.RedisClient
	if cfg.Redis.Enabled {
		redisClient = mustInitRedis(ctx, cfg.Redis)
		defer redisClient.Close()
		cache = redisClient
	}

	storageClient, err := clients.NewLocalStorage(cfg.Storage.ExportDir, cfg.Storage.FilesPublicPrefix, cfg.Storage.ExternalURL)
	if err != nil {
		zap.L().Fatal("storage init", zap.Error(err))
	}

	var publisher service.Publisher = storageClient
	var files http.HandlerFunc = storageClient.ServeFile
	if cfg.S3.Enabled {
		publisher = mustInitS3(ctx, cfg.S3)
		files = nil
	}

	wsHub := websocket.NewHub(cfg.AllowedOrigins...)
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	loanRepo := repository.NewLoanRepository(db, dialect)
	inclusionRepo := repository.NewInclusionRepository(db, dialect)
	userRepo := repository.NewUserRepository(db, dialect)
	sessionRepo := repository.NewSessionRepository(db, dialect)

	oauthClient := clients.NewOAuthClient(clients.OAuthConfig{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
		UserInfoURL:  cfg.OAuth.UserInfoURL,
	})

	profileSvc := service.NewProfileService(loanRepo, inclusionRepo, loanRepo, cache, cfg.CacheTTL)
	dashboardSvc := service.NewDashboardService(loanRepo, cache, cfg.CacheTTL)
	portfolioSvc := service.NewPortfolioExportService(loanRepo, loanRepo, inclusionRepo, cache, publisher, wsClient, cfg.ExportConcurrency)
	exportSvc := service.NewExportService(cache)
	authSvc := service.NewAuthService(oauthClient, userRepo, sessionRepo, cfg.SessionTTL)

	handler := rest.NewHandler(rest.Services{
		Profiles:   profileSvc,
		Dashboard:  dashboardSvc,
		Portfolio:  portfolioSvc,
		ExportList: exportSvc,
		Auth:       authSvc,
		WebSocket:  wsHub,
		DB:         db,
		Files:      files,
	}, rest.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AfterLoginURL:  cfg.OAuth.AfterLoginURL,
		FilesPrefix:    cfg.Storage.FilesPublicPrefix,
		SecureCookies:  strings.HasPrefix(cfg.Storage.ExternalURL, "https://"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.InitRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run HTTP server in goroutine so we can listen for shutdown signals
	srvErr := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// exported workbooks are removed once the retention window has passed
	if files != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := storageClient.CleanupOlderThan(cfg.Storage.Retention); err != nil {
						zap.L().Warn("storage cleanup", zap.Error(err))
					}
				}
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			zap.L().Fatal("HTTP server", zap.Error(err))
		}
	case sig := <-stop:
		zap.L().Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("HTTP server shutdown", zap.Error(err))
		}

		// stops the websocket hub and the cleanup ticker
		cancel()

		zap.L().Info("shutdown complete")
	}
}

func mustInitDatabase(ctx context.Context, cfg config.AppConfig) (*sql.DB, repository.Dialect) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.NewSQLiteConnection(ctx, cfg.Database.SQLitePath)
		if err != nil {
			zap.L().Fatal("sqlite init", zap.Error(err))
		}
		return db, repository.SQLite
	case config.DriverPostgres:
		db, err := postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
			Host:         cfg.Postgres.Host,
			Port:         cfg.Postgres.Port,
			Username:     cfg.Postgres.User,
			DBName:       cfg.Postgres.DBName,
			SSLMode:      cfg.Postgres.SSLMode,
			Password:     cfg.Postgres.Password,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
		})
		if err != nil {
			zap.L().Fatal("postgres init", zap.Error(err))
		}
		return db, repository.Postgres
	default:
		zap.L().Fatal("unknown DB_DRIVER", zap.String("driver", cfg.Database.Driver))
		return nil, ""
	}
}

func mustInitRedis(ctx context.Context, cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(ctx, clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: cfg.DialTimeout,
		Timeout:     cfg.Timeout,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		zap.L().Fatal("redis init", zap.Error(err))
	}
	return client
}

func mustInitS3(ctx context.Context, cfg config.S3Config) *clients.S3Client {
	client, err := clients.NewS3Client(ctx, clients.S3Config{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Bucket:          cfg.Bucket,
		UseSSL:          cfg.UseSSL,
		Region:          cfg.Region,
		Prefix:          cfg.Prefix,
		URLTTL:          cfg.URLTTL,
	})
	if err != nil {
		zap.L().Fatal("s3 init", zap.Error(err))
	}
	return client
}
