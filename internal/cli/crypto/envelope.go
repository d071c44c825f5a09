package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// keyLen — длина одноразового ключа для AES‑256 (в байтах).
const keyLen = 32

// ivLen — длина nonce для GCM (в байтах).
const ivLen = 12

// Ошибки протокола. Каждая — отдельный, различимый сигнал:
// подмену данных (ErrIntegrity) нельзя путать с чужим ключом (ErrKeyMismatch)
// или битой структурой (ErrFormat).
var (
	// ErrKeyMismatch — обёрнутый ключ не снимается этим приватным ключом.
	ErrKeyMismatch = errors.New("wrapped key does not match private key")
	// ErrIntegrity — тег аутентификации не сошёлся: данные подменены или побиты.
	ErrIntegrity = errors.New("ciphertext integrity check failed")
	// ErrFormat — структура данных не разбирается (короткий буфер, битый hex/JSON).
	ErrFormat = errors.New("malformed encrypted data")
)

// FileMetadata — открытые метаданные файла; на сервер уходят только шифром.
type FileMetadata struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
}

// Envelope — результат шифрования одного файла.
// WrappedKey и EncryptedMetadata — hex для текстового транспорта,
// Payload — сырые байты iv||шифртекст.
type Envelope struct {
	WrappedKey        string
	EncryptedMetadata string
	Payload           []byte
}

// Encrypt выполняет гибридное шифрование файла: свежий AES‑256 ключ K,
// два независимых nonce (метаданные и контент шифруются одним K, но пара
// (K, iv) никогда не повторяется), K заворачивается в RSA-OAEP/SHA-256.
// K живёт только в памяти на время вызова.
func Encrypt(publicKey *rsa.PublicKey, meta FileMetadata, raw []byte) (*Envelope, error) {
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating file key: %w", err)
	}

	metaPlain, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("serializing metadata: %w", err)
	}

	encMeta, err := sealWithIV(key, metaPlain)
	if err != nil {
		return nil, err
	}
	payload, err := sealWithIV(key, raw)
	if err != nil {
		return nil, err
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, publicKey, key, nil)
	if err != nil {
		return nil, fmt.Errorf("wrapping file key: %w", err)
	}

	return &Envelope{
		WrappedKey:        hex.EncodeToString(wrapped),
		EncryptedMetadata: hex.EncodeToString(encMeta),
		Payload:           payload,
	}, nil
}

// UnwrapKey снимает RSA‑обёртку с одноразового ключа файла.
func UnwrapKey(privateKey *rsa.PrivateKey, wrappedKeyHex string) ([]byte, error) {
	wrapped, err := hex.DecodeString(wrappedKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid wrapped key hex", ErrFormat)
	}
	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, privateKey, wrapped, nil)
	if err != nil {
		// OAEP не различает «не тот ключ» и «битая обёртка» — для клиента это одно и то же.
		return nil, ErrKeyMismatch
	}
	if len(key) != keyLen {
		return nil, ErrKeyMismatch
	}
	return key, nil
}

// DecryptMetadata расшифровывает только метаданные — контент можно не скачивать.
func DecryptMetadata(privateKey *rsa.PrivateKey, wrappedKeyHex, encryptedMetadataHex string) (*FileMetadata, error) {
	key, err := UnwrapKey(privateKey, wrappedKeyHex)
	if err != nil {
		return nil, err
	}
	encMeta, err := hex.DecodeString(encryptedMetadataHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid metadata hex", ErrFormat)
	}
	plain, err := openWithIV(key, encMeta)
	if err != nil {
		return nil, err
	}
	var meta FileMetadata
	if err := json.Unmarshal(plain, &meta); err != nil {
		return nil, fmt.Errorf("%w: metadata is not valid JSON", ErrFormat)
	}
	return &meta, nil
}

// DecryptPayload расшифровывает контент файла уже снятым ключом.
func DecryptPayload(key, payload []byte) ([]byte, error) {
	return openWithIV(key, payload)
}

// Decrypt — полный обратный ход: снять ключ, расшифровать метаданные и контент.
func Decrypt(privateKey *rsa.PrivateKey, wrappedKeyHex, encryptedMetadataHex string, payload []byte) (*FileMetadata, []byte, error) {
	key, err := UnwrapKey(privateKey, wrappedKeyHex)
	if err != nil {
		return nil, nil, err
	}
	encMeta, err := hex.DecodeString(encryptedMetadataHex)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid metadata hex", ErrFormat)
	}
	metaPlain, err := openWithIV(key, encMeta)
	if err != nil {
		return nil, nil, err
	}
	var meta FileMetadata
	if err := json.Unmarshal(metaPlain, &meta); err != nil {
		return nil, nil, fmt.Errorf("%w: metadata is not valid JSON", ErrFormat)
	}
	raw, err := openWithIV(key, payload)
	if err != nil {
		return nil, nil, err
	}
	return &meta, raw, nil
}

// sealWithIV шифрует plain свежим nonce и возвращает iv||шифртекст (тег внутри).
func sealWithIV(key, plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generating iv: %w", err)
	}
	return gcm.Seal(iv, iv, plain, nil), nil
}

// openWithIV разбирает iv||шифртекст и проверяет тег аутентификации.
func openWithIV(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(data) < ivLen+gcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrFormat)
	}
	plain, err := gcm.Open(nil, data[:ivLen], data[ivLen:], nil)
	if err != nil {
		return nil, ErrIntegrity
	}
	return plain, nil
}
