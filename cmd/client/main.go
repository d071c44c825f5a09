package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Niketw/secure-file-vault/internal/cli/commands"
	"github.com/Niketw/secure-file-vault/internal/config"
)

// заполняются линкером при сборке релиза
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg := config.NewConfig()
	if cfg.Version {
		fmt.Printf("SecureVault CLI %s (built %s)\n", version, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := commands.Dispatch(ctx, cfg, flag.Args())
	stop()
	if code != 0 {
		os.Exit(code)
	}
}
