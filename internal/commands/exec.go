package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"mpsh/internal/core"
)

func (e *Env) execCommands() []*core.Command {
	return []*core.Command{
		{
			Name:      "run",
			Aliases:   []string{"start"},
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "run a local script on the board",
			Usage:     "run <local file>",
			Run:       e.runCmd,
		},
		{
			Name:      "exec",
			MinArgs:   1,
			MaxArgs:   -1,
			NeedsConn: true,
			Summary:   "execute a python statement on the board",
			Usage:     "exec <statement>",
			Run:       e.execCmd,
		},
		{
			Name:      "reset",
			MaxArgs:   0,
			NeedsConn: true,
			Summary:   "soft reset the board",
			Usage:     "reset",
			Run:       e.resetCmd,
		},
	}
}

func (e *Env) runCmd(ctx context.Context, inv core.Invocation) (string, error) {
	local, err := e.findLocal(inv.Args[0])
	if err != nil {
		return "", err
	}
	return inv.Session.Conn().Run(ctx, local)
}

// execCmd пишет выражение во временный файл и запускает его через
// run: своего канала для ввода операторов у внешнего инструмента нет.
func (e *Env) execCmd(ctx context.Context, inv core.Invocation) (string, error) {
	statement := strings.Join(inv.Args, " ")
	tmp, err := os.CreateTemp("", "mpsh-exec-*.py")
	if err != nil {
		return "", fmt.Errorf("create temp script: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(statement + "\n"); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp script: %w", err)
	}
	return inv.Session.Conn().Run(ctx, tmp.Name())
}

func (e *Env) resetCmd(ctx context.Context, inv core.Invocation) (string, error) {
	if err := inv.Session.Conn().Reset(ctx); err != nil {
		return "", err
	}
	return "device reset", nil
}
