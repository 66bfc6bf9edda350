package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mpsh/internal/core"
	"mpsh/internal/device"
)

func (e *Env) compileCommands() []*core.Command {
	return []*core.Command{
		{
			Name:    "mpyc",
			MinArgs: 1,
			MaxArgs: 1,
			Summary: "compile a python file with mpy-cross",
			Usage:   "mpyc <local file>",
			Run:     e.mpycCmd,
		},
		{
			Name:      "putc",
			MinArgs:   1,
			MaxArgs:   2,
			NeedsConn: true,
			Summary:   "compile a python file and upload the bytecode",
			Usage:     "putc <local file> [<remote file>]",
			Run:       e.putcCmd,
		},
	}
}

func (e *Env) mpycCmd(ctx context.Context, inv core.Invocation) (string, error) {
	src, err := e.findLocal(inv.Args[0])
	if err != nil {
		return "", err
	}
	dst, err := e.Compiler.Compile(ctx, src, "")
	if err != nil {
		return "", err
	}
	return "compiled to " + dst, nil
}

// putcCmd компилирует во временный файл, чтобы не засорять локальную
// директорию байткодом.
func (e *Env) putcCmd(ctx context.Context, inv core.Invocation) (string, error) {
	src, err := e.findLocal(inv.Args[0])
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp("", "mpsh-putc-*.mpy")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	if _, err := e.Compiler.Compile(ctx, src, tmpName); err != nil {
		return "", err
	}

	remote := device.MpyName(filepath.Base(src))
	if len(inv.Args) == 2 {
		remote = inv.Args[1]
	}
	remote = inv.Session.Resolve(remote)
	if err := inv.Session.Conn().Put(ctx, tmpName, remote); err != nil {
		return "", err
	}
	return fmt.Sprintf("compiled %s and uploaded as %s", src, remote), nil
}
