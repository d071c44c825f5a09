package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Niketw/secure-file-vault/internal/config"
)

// Dispatch выполняет одну команду CLI и возвращает код выхода процесса.
// Справку и usage печатает сам, наружу уходит только код.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	// глобальный --help перехватываем до всего остального
	for _, a := range os.Args[1:] {
		if a == "--help" || a == "-h" {
			fmt.Fprint(Out, globalUsage())
			return 0
		}
	}
	if !flag.Parsed() {
		flag.Parse()
	}

	if len(args) == 0 {
		fmt.Fprint(Out, globalUsage())
		return 2
	}

	name := strings.ToLower(args[0])
	if name == "help" {
		return runHelp(args[1:])
	}

	cmd, ok := lookup(name)
	if !ok {
		return reportUnknown(name)
	}

	err := cmd.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", cmd.Usage())
		return 2
	default:
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		return 1
	}
}

// runHelp — `vaultcli help [command]`.
func runHelp(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, globalUsage())
		return 0
	}
	if cmd, ok := lookup(strings.ToLower(args[0])); ok {
		fmt.Fprintf(Out, "Usage: %s\n", cmd.Usage())
		return 0
	}
	return reportUnknown(args[0])
}

func reportUnknown(name string) int {
	fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
	fmt.Fprint(Out, globalUsage())
	return 2
}
