package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Niketw/secure-file-vault/internal/cli/api"
	"github.com/Niketw/secure-file-vault/internal/cli/keys"
	fsrepo "github.com/Niketw/secure-file-vault/internal/cli/repo/fs"
	"github.com/Niketw/secure-file-vault/internal/config"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginCmd struct{}

func (loginCmd) Name() string { return "login" }
func (loginCmd) Description() string {
	return "Войти на сервер"
}
func (loginCmd) Usage() string { return "login <username> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	username, password := args[0], args[1]

	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/login"
	resp, body, err := api.PostJSON(endpoint, LoginRequest{Username: username, Password: password}, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("invalid credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		UserID    string `json:"userId"`
		PublicKey string `json:"publicKey"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if err := api.PersistAuthFromResponse(resp); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	store := fsrepo.AuthFSStore{}
	if err := store.SaveLogin(username); err != nil {
		return err
	}
	if err := store.SaveUserID(out.UserID); err != nil {
		return err
	}

	// Обновляем кеш публичного ключа тем, что знает сервер.
	if out.PublicKey != "" {
		if err := keys.NewStore(cfg.KeyDir).SavePublicKey(username, out.PublicKey); err != nil {
			return fmt.Errorf("caching public key: %w", err)
		}
	}

	fmt.Fprintf(Out, "Logged in as %s\n", username)
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
