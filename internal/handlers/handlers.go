package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Niketw/secure-file-vault/internal/config"
	"github.com/Niketw/secure-file-vault/internal/middleware"
	"github.com/Niketw/secure-file-vault/internal/service"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	vaultService *service.VaultService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	fileHandler := NewFileHandler(vaultService, logger, config)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)

	// File routes: все операции привязаны к userID из пути и требуют,
	// чтобы токен сессии принадлежал тому же пользователю.
	r.Post("/api/files/upload/{userID}", fileHandler.Upload)
	r.Get("/api/files/{userID}", fileHandler.List)
	r.Get("/api/files/download/{userID}/{fileID}", fileHandler.Download)
	r.Delete("/api/files/{userID}/{fileID}", fileHandler.Delete)

	return &Handler{Router: r}
}
