package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Niketw/secure-file-vault/internal/model"
)

// UserRepository определяет контракт доступа к User для слоя сервиса.
type UserRepository interface {
	// CreateUser атомарно вставляет пользователя. Возвращает created=false,
	// если username уже занят (ON CONFLICT DO NOTHING — никакого scan-then-insert).
	CreateUser(ctx context.Context, user *model.User) (created bool, err error)

	// GetUserByUsername возвращает пользователя по логину; gorm.ErrRecordNotFound если нет.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// GetUserByID возвращает пользователя по его id; gorm.ErrRecordNotFound если нет.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// ListUsers возвращает всех пользователей (для фоновой сверки хранилищ).
	ListUsers(ctx context.Context) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория для User.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (bool, error) {
	// Уникальность username гарантирует констрейнт БД, а не предварительный поиск:
	// при гонке двух одинаковых регистраций ровно одна вставка пройдёт.
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(user)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
