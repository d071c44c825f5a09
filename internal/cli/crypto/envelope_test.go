package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	require.NoError(t, err)
	return key
}

func TestEnvelope_RoundTrip(t *testing.T) {
	key := testKey(t)
	meta := FileMetadata{Filename: "report.pdf", MimeType: "application/pdf"}
	raw := []byte("very secret file contents")

	env, err := Encrypt(&key.PublicKey, meta, raw)
	require.NoError(t, err)

	// транспортные кодировки: обёрнутый ключ и метаданные — валидный hex
	_, err = hex.DecodeString(env.WrappedKey)
	assert.NoError(t, err)
	_, err = hex.DecodeString(env.EncryptedMetadata)
	assert.NoError(t, err)

	gotMeta, gotRaw, err := Decrypt(key, env.WrappedKey, env.EncryptedMetadata, env.Payload)
	require.NoError(t, err)
	assert.Equal(t, meta, *gotMeta)
	assert.Equal(t, raw, gotRaw)
}

func TestEnvelope_IndependentIVs(t *testing.T) {
	key := testKey(t)
	env, err := Encrypt(&key.PublicKey, FileMetadata{Filename: "a", MimeType: "text/plain"}, []byte("x"))
	require.NoError(t, err)

	encMeta, err := hex.DecodeString(env.EncryptedMetadata)
	require.NoError(t, err)
	// nonce метаданных и контента обязаны быть разными: (K, iv) не повторяется
	assert.False(t, bytes.Equal(encMeta[:ivLen], env.Payload[:ivLen]))
}

// Порча любого бита payload или метаданных должна давать ErrIntegrity,
// а не испорченный открытый текст.
func TestEnvelope_BitFlipFailsClosed(t *testing.T) {
	key := testKey(t)
	meta := FileMetadata{Filename: "notes.txt", MimeType: "text/plain"}
	raw := []byte("contents that must not survive tampering")

	env, err := Encrypt(&key.PublicKey, meta, raw)
	require.NoError(t, err)

	t.Run("payload", func(t *testing.T) {
		for _, pos := range []int{0, ivLen, len(env.Payload) - 1} {
			tampered := make([]byte, len(env.Payload))
			copy(tampered, env.Payload)
			tampered[pos] ^= 0x01

			_, _, err := Decrypt(key, env.WrappedKey, env.EncryptedMetadata, tampered)
			assert.ErrorIs(t, err, ErrIntegrity, "flipped byte at %d", pos)
		}
	})

	t.Run("metadata", func(t *testing.T) {
		encMeta, err := hex.DecodeString(env.EncryptedMetadata)
		require.NoError(t, err)
		tampered := make([]byte, len(encMeta))
		copy(tampered, encMeta)
		tampered[len(tampered)-1] ^= 0x01

		_, err = DecryptMetadata(key, env.WrappedKey, hex.EncodeToString(tampered))
		assert.ErrorIs(t, err, ErrIntegrity)
	})
}

// Расшифровка чужим приватным ключом — ErrKeyMismatch, не тихий мусор.
func TestEnvelope_WrongPrivateKey(t *testing.T) {
	owner := testKey(t)
	stranger := testKey(t)

	env, err := Encrypt(&owner.PublicKey, FileMetadata{Filename: "a", MimeType: "text/plain"}, []byte("data"))
	require.NoError(t, err)

	_, _, err = Decrypt(stranger, env.WrappedKey, env.EncryptedMetadata, env.Payload)
	assert.ErrorIs(t, err, ErrKeyMismatch)

	_, err = DecryptMetadata(stranger, env.WrappedKey, env.EncryptedMetadata)
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestEnvelope_FormatErrors(t *testing.T) {
	key := testKey(t)
	env, err := Encrypt(&key.PublicKey, FileMetadata{Filename: "a", MimeType: "text/plain"}, []byte("data"))
	require.NoError(t, err)

	t.Run("bad wrapped key hex", func(t *testing.T) {
		_, err := UnwrapKey(key, "zzzz")
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("bad metadata hex", func(t *testing.T) {
		_, err := DecryptMetadata(key, env.WrappedKey, "not-hex")
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("payload too short", func(t *testing.T) {
		_, _, err := Decrypt(key, env.WrappedKey, env.EncryptedMetadata, []byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrFormat)
	})
}

// Метаданные можно расшифровать, не скачивая контент.
func TestEnvelope_MetadataOnly(t *testing.T) {
	key := testKey(t)
	meta := FileMetadata{Filename: "big.bin", MimeType: "application/octet-stream"}

	env, err := Encrypt(&key.PublicKey, meta, bytes.Repeat([]byte{0xAB}, 1<<16))
	require.NoError(t, err)

	got, err := DecryptMetadata(key, env.WrappedKey, env.EncryptedMetadata)
	require.NoError(t, err)
	assert.Equal(t, meta, *got)
}

// Каждый вызов Encrypt берёт свежий ключ: одинаковый ввод — разные конверты.
func TestEnvelope_FreshKeyPerFile(t *testing.T) {
	key := testKey(t)
	meta := FileMetadata{Filename: "same.txt", MimeType: "text/plain"}
	raw := []byte("same contents")

	a, err := Encrypt(&key.PublicKey, meta, raw)
	require.NoError(t, err)
	b, err := Encrypt(&key.PublicKey, meta, raw)
	require.NoError(t, err)

	assert.NotEqual(t, a.WrappedKey, b.WrappedKey)
	assert.NotEqual(t, a.Payload, b.Payload)
}
