package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Niketw/secure-file-vault/internal/config"
	"github.com/Niketw/secure-file-vault/internal/handlers"
	"github.com/Niketw/secure-file-vault/internal/middleware"
	"github.com/Niketw/secure-file-vault/internal/repo"
	"github.com/Niketw/secure-file-vault/internal/service"
	"github.com/Niketw/secure-file-vault/internal/storage"
)

const reconcileInterval = 10 * time.Minute

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	blobStore, err := storage.NewBlobStore(cfg.StorageDir)
	if err != nil {
		sugar.Fatalw("failed to initialize blob store", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	fileRepo := repo.NewFileRepository(gormDB)

	userService := service.NewUserService(userRepo, blobStore)
	vaultService := service.NewVaultService(userRepo, fileRepo, blobStore, sugar)

	// фоновая сверка блобов и записей; grace = интервалу, чтобы блоб
	// незавершённой загрузки пережил минимум один проход
	reconciler := service.NewReconciler(userRepo, fileRepo, blobStore, sugar, reconcileInterval)
	go reconciler.Run(ctx, reconcileInterval)

	h := handlers.NewHandler(userService, vaultService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"StorageDir", cfg.StorageDir,
		"BlobMaxSizeMB", cfg.BlobMaxSizeMB,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
