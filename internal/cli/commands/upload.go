package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/Niketw/secure-file-vault/internal/config"
)

type uploadCmd struct{}

func (uploadCmd) Name() string { return "upload" }
func (uploadCmd) Description() string {
	return "Зашифровать и загрузить файл"
}
func (uploadCmd) Usage() string { return "upload <path>" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	path := args[0]

	sess, err := loadSession()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	filename := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	fileID, err := newVaultClient(cfg).Upload(sess, filename, mimeType, raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Uploaded %s (%d bytes) as %s\n", filename, len(raw), fileID)
	return nil
}

func init() { RegisterCmd(uploadCmd{}) }
