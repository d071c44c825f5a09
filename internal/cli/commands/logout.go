package commands

import (
	"context"
	"fmt"

	"github.com/Niketw/secure-file-vault/internal/cli/keys"
	fsrepo "github.com/Niketw/secure-file-vault/internal/cli/repo/fs"
	"github.com/Niketw/secure-file-vault/internal/config"
)

type logoutCmd struct{}

func (logoutCmd) Name() string { return "logout" }
func (logoutCmd) Description() string {
	return "Выйти и очистить сессию"
}
func (logoutCmd) Usage() string { return "logout" }

// Run снимает сессию и чистит кеш публичного ключа. Приватный ключ не трогаем:
// без него файлы пользователя не расшифровать уже никогда.
func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	store := fsrepo.AuthFSStore{}
	username, err := store.LoadLogin()
	if err == nil && username != "" {
		if err := keys.NewStore(cfg.KeyDir).ClearPublicKey(username); err != nil {
			return err
		}
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() { RegisterCmd(logoutCmd{}) }
