package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Niketw/secure-file-vault/internal/model"
	"github.com/Niketw/secure-file-vault/internal/repo"
	"github.com/Niketw/secure-file-vault/internal/storage"
)

// Reconciler — фоновая сверка двух хранилищ. Запись и блоб пишутся не атомарно,
// поэтому падение между записями может оставить сироту. Порядок записей
// гарантирует: после upload сирота — это блоб без записи, после delete —
// запись без блоба. Первых сверка удаляет; вторые только логирует —
// удалять метаданные фоновым процессом было бы необратимо.
//
// grace защищает незавершённые загрузки: блоб появляется на диске раньше
// записи, и свежий блоб без записи — это, скорее всего, upload в полёте,
// а не сирота. Такие блобы сверка не трогает до следующего прохода.
type Reconciler struct {
	users  repo.UserRepository
	files  repo.FileRepository
	blobs  *storage.BlobStore
	logger *zap.SugaredLogger
	grace  time.Duration
}

func NewReconciler(users repo.UserRepository, files repo.FileRepository, blobs *storage.BlobStore, logger *zap.SugaredLogger, grace time.Duration) *Reconciler {
	return &Reconciler{users: users, files: files, blobs: blobs, logger: logger, grace: grace}
}

// Run запускает периодическую сверку до отмены контекста.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				r.logger.Errorw("reconcile sweep failed", "error", err)
			}
		}
	}
}

// Sweep — один проход сверки по всем пользователям. Семантика at-least-once:
// проход может повторно увидеть уже залогированную запись‑сироту, это нормально.
func (r *Reconciler) Sweep(ctx context.Context) error {
	users, err := r.users.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := r.sweepUser(ctx, &u); err != nil {
			r.logger.Errorw("user sweep failed", "user_id", u.ID, "error", err)
		}
	}
	return nil
}

func (r *Reconciler) sweepUser(ctx context.Context, u *model.User) error {
	blobs, err := r.blobs.ListInfo(u.StorageID)
	if err != nil {
		return err
	}
	onDisk := make(map[string]bool, len(blobs))
	for _, b := range blobs {
		onDisk[b.FileID] = true
		_, err := r.files.GetFile(ctx, b.FileID)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if time.Since(b.ModTime) < r.grace {
			// Запись этого блоба могла ещё не успеть появиться.
			continue
		}
		// Блоб без записи: никто до него не доберётся, удаляем.
		if derr := r.blobs.Delete(u.StorageID, b.FileID); derr != nil {
			r.logger.Errorw("failed to delete orphan blob", "storage_id", u.StorageID, "file_id", b.FileID, "error", derr)
			continue
		}
		r.logger.Infow("deleted orphan blob", "storage_id", u.StorageID, "file_id", b.FileID)
	}

	recordIDs, err := r.files.ListIDsByOwner(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, fileID := range recordIDs {
		if !onDisk[fileID] {
			r.logger.Warnw("file record without blob", "user_id", u.ID, "file_id", fileID)
		}
	}
	return nil
}
