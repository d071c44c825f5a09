package model

import "time"

// User — серверная модель пользователя хранилища.
// PublicKey хранится как hex SPKI; приватный ключ на сервер не попадает никогда.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid"`
	Username string `gorm:"uniqueIndex;not null"`
	Name     string `gorm:"not null"`

	PasswordHash string `gorm:"not null"`
	Salt         string `gorm:"not null"`

	PublicKey string `gorm:"not null"`

	// StorageID — неизменяемое пространство имён блобов пользователя.
	// Назначается один раз при регистрации.
	StorageID string `gorm:"not null;type:uuid"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
