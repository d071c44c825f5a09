package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Niketw/secure-file-vault/internal/model"
)

// ErrNotOwner возвращается, когда запись существует, но принадлежит другому пользователю.
var ErrNotOwner = errors.New("file is owned by another user")

// FileRepository — контракт доступа к записям о файлах.
type FileRepository interface {
	// CreateFile вставляет новую запись о файле.
	CreateFile(ctx context.Context, file *model.File) error

	// GetFile возвращает запись по id; gorm.ErrRecordNotFound если нет.
	GetFile(ctx context.Context, id string) (*model.File, error)

	// ListByOwner возвращает все записи владельца.
	ListByOwner(ctx context.Context, ownerID string) ([]model.File, error)

	// DeleteOwned удаляет запись одним DELETE с проверкой владельца в WHERE.
	// gorm.ErrRecordNotFound если записи нет, ErrNotOwner если владелец другой.
	DeleteOwned(ctx context.Context, ownerID, id string) error

	// ListIDsByOwner возвращает id всех записей владельца (для фоновой сверки).
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepository создаёт реализацию репозитория для File.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) CreateFile(ctx context.Context, file *model.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepo) GetFile(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.File, error) {
	var files []model.File
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteOwned: проверка владельца и удаление — одно атомарное выражение,
// а не check-then-act из двух запросов.
func (r *fileRepo) DeleteOwned(ctx context.Context, ownerID, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.File{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}
	// Ничего не удалено: различаем «нет записи» и «чужая запись».
	var f model.File
	if err := r.db.WithContext(ctx).Select("id").Where("id = ?", id).First(&f).Error; err != nil {
		return err // включая gorm.ErrRecordNotFound
	}
	return ErrNotOwner
}

func (r *fileRepo) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.File{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
