package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Niketw/secure-file-vault/internal/cli/api"
	"github.com/Niketw/secure-file-vault/internal/cli/crypto"
	"github.com/Niketw/secure-file-vault/internal/cli/keys"
)

// ErrUndecryptable — файл помечен как нерасшифровываемый по метаданным;
// скачивать его содержимое бессмысленно, расшифровка упадёт тем же образом.
var ErrUndecryptable = errors.New("file metadata could not be decrypted")

// PlaceholderName подставляется вместо имени файла, метаданные которого
// не расшифровались.
const PlaceholderName = "[decryption error]"

// Remote — контракт удалённого сервиса хранилища (HTTP в проде, фейк в тестах).
type Remote interface {
	Upload(userID, wrappedKey, encryptedMetadata string, payload []byte, token string) (string, error)
	List(userID, token string) ([]api.FileEntry, error)
	Download(userID, fileID, token string) ([]byte, error)
	Delete(userID, fileID, token string) error
}

// HTTPRemote — боевая реализация Remote поверх клиентского API.
type HTTPRemote struct {
	BaseURL string
}

func (r HTTPRemote) Upload(userID, wrappedKey, encryptedMetadata string, payload []byte, token string) (string, error) {
	return api.UploadFile(r.BaseURL, userID, wrappedKey, encryptedMetadata, payload, token)
}

func (r HTTPRemote) List(userID, token string) ([]api.FileEntry, error) {
	return api.ListFiles(r.BaseURL, userID, token)
}

func (r HTTPRemote) Download(userID, fileID, token string) ([]byte, error) {
	return api.DownloadFile(r.BaseURL, userID, fileID, token)
}

func (r HTTPRemote) Delete(userID, fileID, token string) error {
	return api.DeleteFile(r.BaseURL, userID, fileID, token)
}

// Session — данные активного пользователя, которые нужны каждой операции.
type Session struct {
	Username string
	UserID   string
	Token    string
}

// ListedFile — результат расшифровки метаданных одного элемента листинга.
// Err != nil помечает элемент как нерасшифровываемый; остальные поля при этом
// заполнены заглушками, а сам элемент из списка не выпадает.
type ListedFile struct {
	FileID    string
	Filename  string
	MimeType  string
	CreatedAt string
	Err       error
}

// VaultClient — клиентская оркестровка: шифрование через конверт и вызовы
// удалённого сервиса. Ключи приходят из внедрённого хранилища, не из
// глобального состояния.
type VaultClient struct {
	remote Remote
	keys   *keys.Store
}

func NewVaultClient(remote Remote, ks *keys.Store) *VaultClient {
	return &VaultClient{remote: remote, keys: ks}
}

// Upload шифрует файл публичным ключом владельца и отправляет на сервер.
// Одна операция — один проход до конца или до ошибки, без частичной отмены.
func (c *VaultClient) Upload(sess Session, filename, mimeType string, raw []byte) (string, error) {
	pubHex, err := c.keys.LoadPublicKey(sess.Username)
	if err != nil {
		return "", fmt.Errorf("loading public key: %w", err)
	}
	pub, err := crypto.ParsePublicKeyHex(pubHex)
	if err != nil {
		return "", err
	}

	env, err := crypto.Encrypt(pub, crypto.FileMetadata{Filename: filename, MimeType: mimeType}, raw)
	if err != nil {
		return "", err
	}
	return c.remote.Upload(sess.UserID, env.WrappedKey, env.EncryptedMetadata, env.Payload, sess.Token)
}

// List получает листинг и расшифровывает метаданные всех элементов
// параллельно. Элементы независимы: ошибка одного не валит остальных,
// он просто превращается в заглушку. Порядок ответа сервера сохраняется.
func (c *VaultClient) List(sess Session) ([]ListedFile, error) {
	privHex, err := c.keys.LoadPrivateKey(sess.Username)
	if err != nil {
		return nil, fmt.Errorf("loading private key: %w", err)
	}
	priv, err := crypto.ParsePrivateKeyHex(privHex)
	if err != nil {
		return nil, err
	}

	entries, err := c.remote.List(sess.UserID, sess.Token)
	if err != nil {
		return nil, err
	}

	out := make([]ListedFile, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e api.FileEntry) {
			defer wg.Done()
			lf := ListedFile{FileID: e.FileID, CreatedAt: e.CreatedAt}
			meta, err := crypto.DecryptMetadata(priv, e.WrappedKey, e.EncryptedMetadata)
			if err != nil {
				lf.Filename = PlaceholderName
				lf.Err = err
			} else {
				lf.Filename = meta.Filename
				lf.MimeType = meta.MimeType
			}
			out[i] = lf
		}(i, e)
	}
	wg.Wait()
	return out, nil
}

// Download скачивает и полностью расшифровывает файл. Сначала проверяются
// метаданные: элемент, который по ним не расшифровывается, помечен как битый,
// и его содержимое не скачиваем вовсе.
func (c *VaultClient) Download(sess Session, fileID string) (*crypto.FileMetadata, []byte, error) {
	privHex, err := c.keys.LoadPrivateKey(sess.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("loading private key: %w", err)
	}
	priv, err := crypto.ParsePrivateKeyHex(privHex)
	if err != nil {
		return nil, nil, err
	}

	entries, err := c.remote.List(sess.UserID, sess.Token)
	if err != nil {
		return nil, nil, err
	}
	var entry *api.FileEntry
	for i := range entries {
		if entries[i].FileID == fileID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return nil, nil, fmt.Errorf("file %s: %w", fileID, api.ErrNotFound)
	}

	meta, err := crypto.DecryptMetadata(priv, entry.WrappedKey, entry.EncryptedMetadata)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUndecryptable, err)
	}

	payload, err := c.remote.Download(sess.UserID, fileID, sess.Token)
	if err != nil {
		return nil, nil, err
	}

	key, err := crypto.UnwrapKey(priv, entry.WrappedKey)
	if err != nil {
		return nil, nil, err
	}
	raw, err := crypto.DecryptPayload(key, payload)
	if err != nil {
		return nil, nil, err
	}
	return meta, raw, nil
}

// Delete запрашивает удаление файла; чужой файл даст api.ErrForbidden.
func (c *VaultClient) Delete(sess Session, fileID string) error {
	return c.remote.Delete(sess.UserID, fileID, sess.Token)
}
