package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBlobNotFound — блоба нет на диске.
var ErrBlobNotFound = errors.New("blob not found")

// StorageError оборачивает низкоуровневую ошибку I/O. Наружу такие ошибки
// уходят как generic failure, подробности остаются в логах.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("blobstore: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// BlobStore — файловое хранилище шифртекстов: каталог на каждый storageID,
// внутри — по файлу <fileID>.enc на блоб. Содержимое блоба сервер не трактует.
type BlobStore struct {
	root string
}

// NewBlobStore создаёт хранилище с корнем root (каталог создаётся при необходимости).
func NewBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, &StorageError{Op: "mkdir root", Err: err}
	}
	return &BlobStore{root: root}, nil
}

// CreateNamespace создаёт каталог пространства имён пользователя.
func (s *BlobStore) CreateNamespace(storageID string) error {
	if err := os.MkdirAll(filepath.Join(s.root, storageID), 0o700); err != nil {
		return &StorageError{Op: "mkdir namespace", Err: err}
	}
	return nil
}

// Save записывает блоб целиком. Запись идёт во временный файл с последующим
// rename, чтобы частично записанный блоб никогда не был виден под финальным именем.
func (s *BlobStore) Save(storageID, fileID string, payload []byte) error {
	dir := filepath.Join(s.root, storageID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &StorageError{Op: "mkdir namespace", Err: err}
	}
	tmp, err := os.CreateTemp(dir, fileID+".tmp-*")
	if err != nil {
		return &StorageError{Op: "create temp", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, s.blobPath(storageID, fileID)); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "rename", Err: err}
	}
	return nil
}

// Load читает блоб целиком. ErrBlobNotFound если файла нет.
func (s *BlobStore) Load(storageID, fileID string) ([]byte, error) {
	b, err := os.ReadFile(s.blobPath(storageID, fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, &StorageError{Op: "read", Err: err}
	}
	return b, nil
}

// Delete удаляет блоб. Отсутствующий блоб ошибкой не считается:
// сверка и повторное удаление должны быть идемпотентны.
func (s *BlobStore) Delete(storageID, fileID string) error {
	err := os.Remove(s.blobPath(storageID, fileID))
	if err != nil && !os.IsNotExist(err) {
		return &StorageError{Op: "remove", Err: err}
	}
	return nil
}

// BlobInfo — блоб в листинге пространства имён. ModTime — момент, когда блоб
// стал виден под финальным именем (rename в Save).
type BlobInfo struct {
	FileID  string
	ModTime time.Time
}

// List возвращает fileID всех блобов в пространстве имён.
func (s *BlobStore) List(storageID string) ([]string, error) {
	infos, err := s.ListInfo(storageID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.FileID)
	}
	return ids, nil
}

// ListInfo возвращает блобы пространства имён вместе со временем записи.
func (s *BlobStore) ListInfo(storageID string) ([]BlobInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, storageID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "readdir", Err: err}
	}
	var infos []BlobInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".enc") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) {
				// блоб удалили между ReadDir и stat
				continue
			}
			return nil, &StorageError{Op: "stat", Err: err}
		}
		infos = append(infos, BlobInfo{
			FileID:  strings.TrimSuffix(name, ".enc"),
			ModTime: fi.ModTime(),
		})
	}
	return infos, nil
}

func (s *BlobStore) blobPath(storageID, fileID string) string {
	return filepath.Join(s.root, storageID, fileID+".enc")
}
