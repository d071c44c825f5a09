package model

import "time"

// File — серверная модель записи о файле. Содержимое файла лежит в блоб‑хранилище
// по адресу (owner.StorageID, file.ID); здесь только обёрнутый ключ и шифрованные
// метаданные. Сервер не может расшифровать ни то, ни другое.
type File struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	OwnerID string `gorm:"not null;index;type:uuid"` // ссылка на users.id, неизменяемая

	// Связи
	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// WrappedKey — RSA-OAEP шифртекст одноразового AES‑ключа, hex.
	WrappedKey string `gorm:"not null"`

	// EncryptedMetadata — iv||gcm({filename,mimeType}), hex.
	EncryptedMetadata string `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
