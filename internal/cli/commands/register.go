package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Niketw/secure-file-vault/internal/cli/api"
	"github.com/Niketw/secure-file-vault/internal/cli/crypto"
	"github.com/Niketw/secure-file-vault/internal/cli/keys"
	fsrepo "github.com/Niketw/secure-file-vault/internal/cli/repo/fs"
	"github.com/Niketw/secure-file-vault/internal/config"
)

type RegisterRequest struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	PublicKey string `json:"publicKey"`
}

type registerCmd struct{}

func (registerCmd) Name() string { return "register" }
func (registerCmd) Description() string {
	return "Создать аккаунт и ключевую пару"
}
func (registerCmd) Usage() string { return "register <username> <name> <password>" }

// Run генерирует ключевую пару локально и отправляет на сервер только
// публичный ключ. Приватный остаётся в каталоге ключей клиента.
func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	username, name, password := args[0], args[1], args[2]

	publicKeyHex, privateKeyHex, err := crypto.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	ks := keys.NewStore(cfg.KeyDir)
	if err := ks.SavePrivateKey(username, privateKeyHex); err != nil {
		return fmt.Errorf("saving private key: %w", err)
	}
	if err := ks.SavePublicKey(username, publicKeyHex); err != nil {
		return fmt.Errorf("saving public key: %w", err)
	}

	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/register"
	req := RegisterRequest{Username: username, Name: name, Password: password, PublicKey: publicKeyHex}
	resp, body, err := api.PostJSON(endpoint, req, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	store := fsrepo.AuthFSStore{}
	if err := api.PersistAuthFromResponse(resp); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := store.SaveLogin(username); err != nil {
		return err
	}
	if err := store.SaveUserID(out.UserID); err != nil {
		return err
	}

	fmt.Fprintf(Out, "Registered as %s (id %s)\n", username, out.UserID)
	fmt.Fprintf(Out, "Private key saved to %s — back it up, there is no recovery.\n", cfg.KeyDir)
	return nil
}

func init() { RegisterCmd(registerCmd{}) }
