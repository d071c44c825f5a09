package repo

import (
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/Niketw/secure-file-vault/internal/model"
)

// InitDB открывает подключение к БД и прогоняет миграции.
// Непустой DSN трактуется как Postgres; пустой — локальный SQLite файл
// (pure-Go драйвер modernc, без cgo).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if dsn != "" {
		dial = postgres.Open(dsn)
	} else {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: "vault.db"}
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.File{}); err != nil {
		return nil, err
	}
	return db, nil
}
