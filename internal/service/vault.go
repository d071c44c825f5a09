package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Niketw/secure-file-vault/internal/model"
	"github.com/Niketw/secure-file-vault/internal/repo"
	"github.com/Niketw/secure-file-vault/internal/storage"
)

var (
	// ErrUserNotFound — операция адресована несуществующему пользователю.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotFound — нет записи о файле или его блоба.
	ErrNotFound = errors.New("file not found")
	// ErrForbidden — вызывающий не владелец файла.
	ErrForbidden = errors.New("not the owner of this file")
)

// VaultService связывает хранилище метаданных и блоб‑хранилище и следит
// за их согласованностью. Контент и метаданные файлов сервис не расшифровывает —
// приватных ключей на сервере нет.
type VaultService struct {
	users  repo.UserRepository
	files  repo.FileRepository
	blobs  *storage.BlobStore
	logger *zap.SugaredLogger
}

func NewVaultService(users repo.UserRepository, files repo.FileRepository, blobs *storage.BlobStore, logger *zap.SugaredLogger) *VaultService {
	return &VaultService{users: users, files: files, blobs: blobs, logger: logger}
}

// Upload сохраняет блоб и создаёт запись о файле. Порядок фиксированный:
// сначала блоб, потом запись — падение между ними оставляет блоб‑сироту,
// который подберёт фоновая сверка, но никогда не запись без блоба.
func (s *VaultService) Upload(ctx context.Context, userID, wrappedKey, encryptedMetadata string, payload []byte) (string, error) {
	if wrappedKey == "" || encryptedMetadata == "" || len(payload) == 0 {
		return "", fmt.Errorf("%w: wrapped key, metadata and payload are required", ErrValidation)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	fileID := uuid.NewString()
	if err := s.blobs.Save(user.StorageID, fileID, payload); err != nil {
		return "", err
	}

	file := &model.File{
		ID:                fileID,
		OwnerID:           user.ID,
		WrappedKey:        wrappedKey,
		EncryptedMetadata: encryptedMetadata,
	}
	if err := s.files.CreateFile(ctx, file); err != nil {
		// Запись не создалась — блоб больше никому не принадлежит, убираем его.
		if derr := s.blobs.Delete(user.StorageID, fileID); derr != nil {
			s.logger.Errorw("failed to remove blob after record failure",
				"storage_id", user.StorageID, "file_id", fileID, "error", derr)
		}
		return "", fmt.Errorf("creating file record: %w", err)
	}
	return fileID, nil
}

// List возвращает записи файлов пользователя. Содержимое не трогаем.
func (s *VaultService) List(ctx context.Context, userID string) ([]model.File, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return s.files.ListByOwner(ctx, userID)
}

// Download отдаёт шифртекст блоба как есть: запись → владелец → namespace → блоб.
func (s *VaultService) Download(ctx context.Context, userID, fileID string) ([]byte, error) {
	file, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up file: %w", err)
	}
	if file.OwnerID != userID {
		return nil, ErrForbidden
	}

	owner, err := s.users.GetUserByID(ctx, file.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up owner: %w", err)
	}

	payload, err := s.blobs.Load(owner.StorageID, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

// Delete удаляет файл владельца: сначала блоб, потом запись. Падение между
// шагами оставляет осиротевшую запись — безвредно, блоба без следа не бывает.
// Проверку владельца выполняет репозиторий одним атомарным DELETE.
func (s *VaultService) Delete(ctx context.Context, userID, fileID string) error {
	file, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("looking up file: %w", err)
	}
	if file.OwnerID != userID {
		return ErrForbidden
	}

	owner, err := s.users.GetUserByID(ctx, file.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("looking up owner: %w", err)
	}

	if err := s.blobs.Delete(owner.StorageID, fileID); err != nil {
		return err
	}

	if err := s.files.DeleteOwned(ctx, userID, fileID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrNotFound
		case errors.Is(err, repo.ErrNotOwner):
			return ErrForbidden
		default:
			return fmt.Errorf("deleting file record: %w", err)
		}
	}
	return nil
}
