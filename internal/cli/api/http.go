package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	fsrepo "github.com/Niketw/secure-file-vault/internal/cli/repo/fs"
)

// ErrForbidden/ErrNotFound — стабильные ошибки клиентского API, чтобы команды
// могли различать «чужой файл» и «нет такого файла».
var (
	ErrForbidden = fmt.Errorf("forbidden")
	ErrNotFound  = fmt.Errorf("not found")
)

// FileEntry — элемент серверного листинга: ничего расшифрованного.
type FileEntry struct {
	FileID            string `json:"fileId"`
	WrappedKey        string `json:"wrappedKey"`
	EncryptedMetadata string `json:"encryptedMetadata"`
	CreatedAt         string `json:"createdAt"`
}

// PostJSON sends a JSON POST request. If token is non-empty, it is passed as auth cookie.
func PostJSON(url string, payload any, token string) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body, nil
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его через файловое хранилище.
func PersistAuthFromResponse(resp *http.Response) error {
	store := fsrepo.AuthFSStore{}
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}

// UploadFile отправляет сырой шифртекст с hex‑заголовками и возвращает fileId.
func UploadFile(baseURL, userID, wrappedKey, encryptedMetadata string, payload []byte, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/files/upload/"+userID, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Encrypted-Key", wrappedKey)
	req.Header.Set("X-Encrypted-Metadata", encryptedMetadata)
	req.Header.Set("Cookie", "auth_token="+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", statusError("upload", resp.StatusCode, body)
	}

	var out struct {
		FileID string `json:"fileId"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	return out.FileID, nil
}

// ListFiles возвращает записи файлов пользователя.
func ListFiles(baseURL, userID, token string) ([]FileEntry, error) {
	body, err := getWithAuth(baseURL+"/api/files/"+userID, token, "list")
	if err != nil {
		return nil, err
	}
	var entries []FileEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}
	return entries, nil
}

// DownloadFile скачивает iv||шифртекст файла.
func DownloadFile(baseURL, userID, fileID, token string) ([]byte, error) {
	return getWithAuth(baseURL+"/api/files/download/"+userID+"/"+fileID, token, "download")
}

// DeleteFile запрашивает удаление файла.
func DeleteFile(baseURL, userID, fileID, token string) error {
	req, err := http.NewRequest(http.MethodDelete, baseURL+"/api/files/"+userID+"/"+fileID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cookie", "auth_token="+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return statusError("delete", resp.StatusCode, body)
	}
	return nil
}

func getWithAuth(url, token, op string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", "auth_token="+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(op, resp.StatusCode, body)
	}
	return body, nil
}

func statusError(op string, code int, body []byte) error {
	switch code {
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return fmt.Errorf("%s: server returned %d: %s", op, code, bytes.TrimSpace(body))
	}
}
