package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Niketw/secure-file-vault/internal/config"
	"github.com/Niketw/secure-file-vault/internal/middleware"
	"github.com/Niketw/secure-file-vault/internal/service"
)

// Заголовки, в которых клиент передаёт обёрнутый ключ и шифрованные метаданные (hex).
const (
	headerEncryptedKey      = "X-Encrypted-Key"
	headerEncryptedMetadata = "X-Encrypted-Metadata"
)

// FileHandler обрабатывает загрузку, листинг, скачивание и удаление файлов.
// Тела файлов для сервера непрозрачны: iv||шифртекст как пришёл, так и ушёл.
type FileHandler struct {
	VaultService *service.VaultService
	Logger       *zap.SugaredLogger
	Config       *config.Config
}

func NewFileHandler(vaultService *service.VaultService, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{VaultService: vaultService, Logger: logger, Config: cfg}
}

// FileDTO — элемент ответа листинга.
type FileDTO struct {
	FileID            string `json:"fileId"`
	WrappedKey        string `json:"wrappedKey"`
	EncryptedMetadata string `json:"encryptedMetadata"`
	CreatedAt         string `json:"createdAt"`
}

// authorize сверяет userID из пути с владельцем токена сессии.
// Идентификатору из URL без подтверждения токеном не верим.
func (h *FileHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	pathUserID := chi.URLParam(r, "userID")
	tokenUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if pathUserID != tokenUserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return pathUserID, true
}

// Upload принимает сырое тело (iv||шифртекст) и hex‑заголовки с обёрнутым
// ключом и метаданными.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	wrappedKey := r.Header.Get(headerEncryptedKey)
	encryptedMetadata := r.Header.Get(headerEncryptedMetadata)
	if wrappedKey == "" || encryptedMetadata == "" {
		h.Logger.Warnw("Upload: missing encryption headers", "user_id", userID)
		http.Error(w, "wrapped key and encrypted metadata are required", http.StatusBadRequest)
		return
	}

	// Лимит тела запроса
	maxBody := int64(h.Config.BlobMaxSizeMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Logger.Warnw("Upload: payload too large", "user_id", userID, "limit", maxBody)
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.Logger.Warnw("Upload: failed to read body", "user_id", userID, "error", err)
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	if len(payload) == 0 {
		http.Error(w, "file content is required", http.StatusBadRequest)
		return
	}

	fileID, err := h.VaultService.Upload(r.Context(), userID, wrappedKey, encryptedMetadata, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			http.Error(w, "wrapped key, metadata and payload are required", http.StatusBadRequest)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			h.Logger.Errorw("Upload: service error", "user_id", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"fileId": fileID})
}

// List возвращает записи файлов пользователя; ничего не расшифровывает.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	files, err := h.VaultService.List(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			h.Logger.Errorw("List: service error", "user_id", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	resp := make([]FileDTO, 0, len(files))
	for _, f := range files {
		resp = append(resp, FileDTO{
			FileID:            f.ID,
			WrappedKey:        f.WrappedKey,
			EncryptedMetadata: f.EncryptedMetadata,
			CreatedAt:         f.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Download отдаёт блоб как octet-stream.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "fileID")

	payload, err := h.VaultService.Download(r.Context(), userID, fileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "file not found", http.StatusNotFound)
		case errors.Is(err, service.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			h.Logger.Errorw("Download: service error", "user_id", userID, "file_id", fileID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(payload)
}

// Delete удаляет файл владельца.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "fileID")

	if err := h.VaultService.Delete(r.Context(), userID, fileID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "file not found", http.StatusNotFound)
		case errors.Is(err, service.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			h.Logger.Errorw("Delete: service error", "user_id", userID, "file_id", fileID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"deleted": true})
}
