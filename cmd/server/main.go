package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seipay/custody/internal/api"
	"github.com/seipay/custody/internal/app"
	"github.com/seipay/custody/internal/config"
	"github.com/seipay/custody/internal/keywrap"
	"github.com/seipay/custody/internal/logger"
	"github.com/seipay/custody/internal/storage"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.PostgresDSN)
	if err != nil {
		logger.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	wrapper, err := keywrap.New(&keywrap.Config{
		Provider:          cfg.KeywrapProvider,
		LocalMasterKeyHex: cfg.LocalMasterKeyHex,
		AWSKMSKeyID:       cfg.AWSKMSKeyID,
		AWSKMSRegion:      cfg.AWSKMSRegion,
		VaultAddress:      cfg.VaultAddress,
		VaultToken:        cfg.VaultToken,
		VaultTransitKey:   cfg.VaultTransitKey,
	})
	if err != nil {
		logger.Error(ctx, "failed to initialize record wrapper", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "record wrapper initialized", "provider", wrapper.Provider())

	vaultService := app.NewVaultService(
		storage.NewVaultRepository(store),
		storage.NewAuditLogRepo(store),
		wrapper,
	)

	server := api.NewServer(cfg, vaultService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "server error", "error", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info(ctx, "shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info(ctx, "server stopped")
}
