package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"mpsh/internal/core"
)

func (e *Env) localCommands() []*core.Command {
	return []*core.Command{
		{
			Name:    "lls",
			MaxArgs: 1,
			Summary: "list files in the local directory",
			Usage:   "lls [<local dir>]",
			Run:     e.llsCmd,
		},
		{
			Name:    "lcd",
			MinArgs: 1,
			MaxArgs: 1,
			Summary: "change the local directory",
			Usage:   "lcd <local dir>",
			Run:     e.lcdCmd,
		},
		{
			Name:    "lpwd",
			MaxArgs: 0,
			Summary: "print the local directory",
			Usage:   "lpwd",
			Run:     e.lpwdCmd,
		},
	}
}

func (e *Env) llsCmd(ctx context.Context, inv core.Invocation) (string, error) {
	dir := "."
	if len(inv.Args) == 1 {
		dir = inv.Args[0]
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	// Директории первыми, как в оригинальном lls.
	var b strings.Builder
	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Fprintf(&b, " <dir> %s\n", entry.Name())
		}
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			fmt.Fprintf(&b, "       %s\n", entry.Name())
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Env) lcdCmd(ctx context.Context, inv core.Invocation) (string, error) {
	if err := os.Chdir(inv.Args[0]); err != nil {
		return "", err
	}
	return os.Getwd()
}

func (e *Env) lpwdCmd(ctx context.Context, inv core.Invocation) (string, error) {
	return os.Getwd()
}

// localFiles возвращает имена обычных файлов в директории.
func localFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
