package service

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
	"gorm.io/gorm"

	"github.com/Niketw/secure-file-vault/internal/model"
	"github.com/Niketw/secure-file-vault/internal/repo"
	"github.com/Niketw/secure-file-vault/internal/storage"
)

var (
	// ErrUsernameTaken — логин уже занят.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials — неизвестный логин или неверный пароль (не различаем).
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation — отсутствующее или некорректное поле запроса.
	ErrValidation = errors.New("missing or malformed field")
)

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLen     = 64
	saltLen          = 16
)

// UserService — регистрация и вход. Пароль хранится как pbkdf2-хеш с
// индивидуальной солью; публичный ключ пользователя сохраняется как есть.
type UserService struct {
	users repo.UserRepository
	blobs *storage.BlobStore
}

func NewUserService(users repo.UserRepository, blobs *storage.BlobStore) *UserService {
	return &UserService{users: users, blobs: blobs}
}

// hashPassword — pbkdf2(sha512, 100000, 64 байта), соль и хеш в hex.
func hashPassword(password, saltHex string) string {
	salt, _ := hex.DecodeString(saltHex)
	return hex.EncodeToString(pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha512.New))
}

// Register создаёт пользователя и его пространство имён для блобов.
// Уникальность username обеспечивает репозиторий (атомарная вставка).
func (s *UserService) Register(ctx context.Context, username, name, password, publicKey string) (*model.User, error) {
	if username == "" || name == "" || password == "" || publicKey == "" {
		return nil, fmt.Errorf("%w: username, name, password and public key are required", ErrValidation)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         name,
		Salt:         saltHex,
		PasswordHash: hashPassword(password, saltHex),
		PublicKey:    publicKey,
		StorageID:    uuid.NewString(),
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	if !created {
		return nil, ErrUsernameTaken
	}

	if err := s.blobs.CreateNamespace(user.StorageID); err != nil {
		return nil, err
	}
	return user, nil
}

// Login проверяет пароль. Сравнение хешей — за константное время; для
// неизвестного логина хеш всё равно считается, чтобы тайминг не выдавал,
// на каком шаге проверка провалилась.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hashPassword(password, hex.EncodeToString(make([]byte, saltLen)))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	got := hashPassword(password, user.Salt)
	if subtle.ConstantTimeCompare([]byte(got), []byte(user.PasswordHash)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
