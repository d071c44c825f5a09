package keys

import (
	"errors"
	"os"
	"path/filepath"
)

// Store — файловое хранилище ключей клиента с явным жизненным циклом
// save/load/clear. Внедряется туда, где нужен ключ; никакого скрытого
// глобального кеша. Публичный ключ — не секрет, просто кеш для удобства.
// Приватный ключ лежит только здесь, 0600, и никуда не передаётся.
type Store struct {
	dir string
}

// NewStore создаёт хранилище ключей в каталоге dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) ensureDir() error {
	return os.MkdirAll(s.dir, 0o700)
}

func (s *Store) publicPath(username string) string {
	return filepath.Join(s.dir, username+"_public.hex")
}

func (s *Store) privatePath(username string) string {
	return filepath.Join(s.dir, username+"_private.hex")
}

// SavePublicKey кеширует hex SPKI публичного ключа пользователя.
func (s *Store) SavePublicKey(username, publicKeyHex string) error {
	if username == "" {
		return errors.New("empty username")
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	return os.WriteFile(s.publicPath(username), []byte(publicKeyHex), 0o600)
}

// LoadPublicKey читает кешированный публичный ключ.
func (s *Store) LoadPublicKey(username string) (string, error) {
	b, err := os.ReadFile(s.publicPath(username))
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errors.New("empty public key file")
	}
	return string(b), nil
}

// ClearPublicKey убирает кешированный публичный ключ (например, при logout).
func (s *Store) ClearPublicKey(username string) error {
	err := os.Remove(s.publicPath(username))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SavePrivateKey сохраняет hex PKCS#8 приватного ключа. Вызывается один раз
// при генерации пары; пользователь — единственный хранитель этого файла.
func (s *Store) SavePrivateKey(username, privateKeyHex string) error {
	if username == "" {
		return errors.New("empty username")
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	return os.WriteFile(s.privatePath(username), []byte(privateKeyHex), 0o600)
}

// LoadPrivateKey читает приватный ключ пользователя.
func (s *Store) LoadPrivateKey(username string) (string, error) {
	b, err := os.ReadFile(s.privatePath(username))
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errors.New("empty private key file")
	}
	return string(b), nil
}
