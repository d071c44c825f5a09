package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/Niketw/secure-file-vault/internal/config"
)

type getCmd struct{}

func (getCmd) Name() string { return "get" }
func (getCmd) Description() string {
	return "Скачать и расшифровать файл"
}
func (getCmd) Usage() string { return "get <fileId> [out-path]" }

func (getCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	fileID := args[0]

	sess, err := loadSession()
	if err != nil {
		return err
	}

	meta, raw, err := newVaultClient(cfg).Download(sess, fileID)
	if err != nil {
		return err
	}

	outPath := meta.Filename
	if len(args) == 2 {
		outPath = args[1]
	}
	if err := os.WriteFile(outPath, raw, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	fmt.Fprintf(Out, "Saved %s (%s, %d bytes) to %s\n", meta.Filename, meta.MimeType, len(raw), outPath)
	return nil
}

func init() { RegisterCmd(getCmd{}) }
