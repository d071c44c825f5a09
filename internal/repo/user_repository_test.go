package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Niketw/secure-file-vault/internal/model"
)

func newUser(username string) *model.User {
	return &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         "John Doe",
		PasswordHash: "hash",
		Salt:         "salt",
		PublicKey:    "deadbeef",
		StorageID:    uuid.NewString(),
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	// успешное создание
	u := newUser("john")
	created, err := r.CreateUser(ctx, u)
	require.NoError(t, err)
	assert.True(t, created)

	// поиск по логину — найдено
	got, err := r.GetUserByUsername(ctx, "john")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.StorageID, got.StorageID)

	// поиск по id — найдено
	got, err = r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "john", got.Username)

	// уникальный логин — вторая вставка должна вернуть created=false, не ошибку
	created, err = r.CreateUser(ctx, newUser("john"))
	require.NoError(t, err)
	assert.False(t, created)

	// первая запись не перезаписана
	got, err = r.GetUserByUsername(ctx, "john")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// поиск несуществующего — ожидаем gorm.ErrRecordNotFound
	_, err = r.GetUserByUsername(ctx, "doesnotexist")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = r.GetUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ListUsers(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	_, err := r.CreateUser(ctx, newUser("alice"))
	require.NoError(t, err)
	_, err = r.CreateUser(ctx, newUser("bob"))
	require.NoError(t, err)

	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
