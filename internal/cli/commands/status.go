package commands

import (
	"context"
	"fmt"

	fsrepo "github.com/Niketw/secure-file-vault/internal/cli/repo/fs"
	"github.com/Niketw/secure-file-vault/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string { return "status" }
func (statusCmd) Description() string {
	return "Показать текущую сессию"
}
func (statusCmd) Usage() string { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}

	fmt.Fprintf(Out, "Server: %s\n", cfg.ServerURL)

	store := fsrepo.AuthFSStore{}
	username, err := store.LoadLogin()
	if err != nil {
		fmt.Fprintln(Out, "User: <not logged in>")
		return nil
	}
	fmt.Fprintf(Out, "User: %s\n", username)
	if userID, err := store.LoadUserID(); err == nil {
		fmt.Fprintf(Out, "UserID: %s\n", userID)
	}
	if _, err := store.Load(); err == nil {
		fmt.Fprintln(Out, "Session token: present")
	} else {
		fmt.Fprintln(Out, "Session token: missing")
	}
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
