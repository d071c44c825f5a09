package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/Niketw/secure-file-vault/internal/cli/api"
	"github.com/Niketw/secure-file-vault/internal/config"
)

type rmCmd struct{}

func (rmCmd) Name() string { return "rm" }
func (rmCmd) Description() string {
	return "Удалить файл из хранилища"
}
func (rmCmd) Usage() string { return "rm <fileId>" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	fileID := args[0]

	sess, err := loadSession()
	if err != nil {
		return err
	}

	if err := newVaultClient(cfg).Delete(sess, fileID); err != nil {
		switch {
		case errors.Is(err, api.ErrForbidden):
			return fmt.Errorf("файл принадлежит другому пользователю")
		case errors.Is(err, api.ErrNotFound):
			return fmt.Errorf("файл не найден")
		default:
			return err
		}
	}
	fmt.Fprintf(Out, "Deleted %s\n", fileID)
	return nil
}

func init() { RegisterCmd(rmCmd{}) }
