package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"fmt"
)

// Параметры асимметричной схемы. Совпадают с тем, что умеет импортировать
// любой WebCrypto‑клиент: RSA-2048, e=65537, OAEP поверх SHA-256.
const rsaKeyBits = 2048

// GenerateKeyPair генерирует ключевую пару пользователя.
// Публичный ключ экспортируется как SPKI (PKIX) DER в hex, приватный — как
// PKCS#8 DER в hex. Побочных эффектов нет; единственная причина отказа —
// сбой источника энтропии.
func GenerateKeyPair() (publicKeyHex, privateKeyHex string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return "", "", fmt.Errorf("generating RSA key: %w", err)
	}

	spki, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("exporting public key: %w", err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", fmt.Errorf("exporting private key: %w", err)
	}

	return hex.EncodeToString(spki), hex.EncodeToString(pkcs8), nil
}

// ParsePublicKeyHex разбирает hex SPKI в публичный RSA‑ключ.
func ParsePublicKeyHex(h string) (*rsa.PublicKey, error) {
	der, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid public key hex", ErrFormat)
	}
	keyAny, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SPKI public key", ErrFormat)
	}
	pub, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", ErrFormat)
	}
	return pub, nil
}

// ParsePrivateKeyHex разбирает hex PKCS#8 в приватный RSA‑ключ.
func ParsePrivateKeyHex(h string) (*rsa.PrivateKey, error) {
	der, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key hex", ErrFormat)
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid PKCS#8 private key", ErrFormat)
	}
	priv, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", ErrFormat)
	}
	return priv, nil
}
