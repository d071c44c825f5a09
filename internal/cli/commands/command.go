package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Niketw/secure-file-vault/internal/config"
)

// ErrUsage возвращается командой при неверных аргументах; диспетчер
// печатает usage вместо текста ошибки.
var ErrUsage = errors.New("usage")

// Command — подкоманда CLI. Регистрируется из init() своего файла.
type Command interface {
	// Name — имя команды, как её набирает пользователь, например "login".
	Name() string
	// Description — короткое описание для общей справки.
	Description() string
	// Usage — строка вызова, например "login <username> <password>".
	Usage() string
	// Run выполняет команду; args — аргументы без имени команды.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Out — writer для всего вывода CLI; тесты подменяют его буфером.
var Out io.Writer = os.Stdout

var registry = map[string]Command{}

// RegisterCmd добавляет команду в реестр.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

func lookup(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// globalUsage собирает общую справку; ширина колонки подгоняется под
// самую длинную строку вызова.
func globalUsage() string {
	names := make([]string, 0, len(registry))
	width := 0
	for name, c := range registry {
		names = append(names, name)
		if n := len(c.Usage()); n > width {
			width = n
		}
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("SecureVault CLI\n\n")
	b.WriteString("Usage:\n  vaultcli [--base-url <host:port>] <command> [args]\n\n")
	b.WriteString("Commands:\n")
	for _, name := range names {
		c := registry[name]
		fmt.Fprintf(&b, "  %-*s  %s\n", width, c.Usage(), c.Description())
	}
	b.WriteString("\nRun 'vaultcli help <command>' for details on a command.\n")
	return b.String()
}
