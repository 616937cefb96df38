// @title                       Document System API
// @version                     1.0
// @description                 Accounts, roles and access-controlled documents.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/docvault/document-system/internal/api"
	"github.com/docvault/document-system/internal/api/handler"
	"github.com/docvault/document-system/internal/api/metrics"
	"github.com/docvault/document-system/internal/core/service"
	mongodb "github.com/docvault/document-system/internal/infrastructure/db/mongo"
	redisdb "github.com/docvault/document-system/internal/infrastructure/db/redis"
	"github.com/docvault/document-system/internal/pkg/config"
	"github.com/docvault/document-system/internal/pkg/password"
	"github.com/docvault/document-system/internal/pkg/token"
	"github.com/docvault/document-system/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "document-system",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	issuer, err := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	if err != nil {
		return err
	}

	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	docRepo := mongodb.NewDocumentRepository(db)
	revocations := redisdb.NewRevocationList(rdb)

	roleService := service.NewRoleService(roleRepo, log)
	userService := service.NewUserService(userRepo, roleRepo, password.NewHasher(cfg.Auth.BcryptCost), issuer, log)
	authService := service.NewAuthService(userService, roleRepo, revocations, log)
	docService := service.NewDocumentService(docRepo, log)

	// A failed seed is not fatal; signup warns while the regular role is missing.
	if err := roleService.Initialize(ctx); err != nil {
		metrics.RoleSeedTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("default roles not seeded")
	} else {
		metrics.RoleSeedTotal.WithLabelValues("ok").Inc()
		log.Info().Msg("default roles seeded")
	}

	e := api.NewRouter(api.Dependencies{
		Auth:        authService,
		Users:       userService,
		Roles:       roleService,
		Documents:   docService,
		Tokens:      issuer,
		Revocations: revocations,
		Health: map[string]handler.Pinger{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
