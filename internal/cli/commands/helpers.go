package commands

import (
	"fmt"

	"github.com/Niketw/secure-file-vault/internal/cli/keys"
	fsrepo "github.com/Niketw/secure-file-vault/internal/cli/repo/fs"
	"github.com/Niketw/secure-file-vault/internal/cli/service"
	"github.com/Niketw/secure-file-vault/internal/config"
)

// loadSession собирает данные активного пользователя из файлового хранилища.
func loadSession() (service.Session, error) {
	store := fsrepo.AuthFSStore{}
	username, err := store.LoadLogin()
	if err != nil {
		return service.Session{}, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}
	userID, err := store.LoadUserID()
	if err != nil {
		return service.Session{}, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}
	token, err := store.Load()
	if err != nil {
		return service.Session{}, fmt.Errorf("нет токена сессии: выполните login: %w", err)
	}
	return service.Session{Username: username, UserID: userID, Token: token}, nil
}

// newVaultClient собирает клиента хранилища с боевым HTTP‑транспортом.
func newVaultClient(cfg *config.Config) *service.VaultClient {
	return service.NewVaultClient(
		service.HTTPRemote{BaseURL: cfg.ServerURL},
		keys.NewStore(cfg.KeyDir),
	)
}
