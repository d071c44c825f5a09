package commands

import (
	"context"
	"fmt"

	"github.com/Niketw/secure-file-vault/internal/config"
)

type filesCmd struct{}

func (filesCmd) Name() string { return "files" }
func (filesCmd) Description() string {
	return "Показать файлы хранилища"
}
func (filesCmd) Usage() string { return "files" }

func (filesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}

	sess, err := loadSession()
	if err != nil {
		return err
	}

	list, err := newVaultClient(cfg).List(sess)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет файлов")
		return nil
	}
	for _, f := range list {
		if f.Err != nil {
			fmt.Fprintf(Out, "- %s  %s\n", f.FileID, f.Filename)
			continue
		}
		fmt.Fprintf(Out, "- %s  %s (%s)  %s\n", f.FileID, f.Filename, f.MimeType, f.CreatedAt)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(filesCmd{}) }
