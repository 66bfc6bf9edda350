package commands

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"mpsh/internal/core"
)

func (e *Env) fileCommands() []*core.Command {
	return []*core.Command{
		{
			Name:      "ls",
			Aliases:   []string{"dir"},
			MaxArgs:   1,
			Flags:     []string{"-l"},
			NeedsConn: true,
			Summary:   "list files on the board",
			Usage:     "ls [-l] [<remote dir>]",
			Run:       e.lsCmd,
		},
		{
			Name:      "cat",
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "print a remote file",
			Usage:     "cat <remote file>",
			Run:       e.catCmd,
		},
		{
			Name:      "put",
			MinArgs:   1,
			MaxArgs:   2,
			NeedsConn: true,
			Summary:   "copy a local file to the board",
			Usage:     "put <local file> [<remote file>]",
			Run:       e.putCmd,
		},
		{
			Name:      "get",
			MinArgs:   1,
			MaxArgs:   2,
			NeedsConn: true,
			Summary:   "copy a remote file to this machine",
			Usage:     "get <remote file> [<local file>]",
			Run:       e.getCmd,
		},
		{
			Name:      "rm",
			Aliases:   []string{"del"},
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "delete a remote file",
			Usage:     "rm <remote file>",
			Run:       e.rmCmd,
		},
		{
			Name:      "md",
			Aliases:   []string{"mkdir"},
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "create a remote directory",
			Usage:     "md <remote dir>",
			Run:       e.mdCmd,
		},
		{
			Name:      "rmdir",
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "delete a remote directory",
			Usage:     "rmdir <remote dir>",
			Run:       e.rmdirCmd,
		},
		{
			Name:      "cd",
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "change the remote directory",
			Usage:     "cd <remote dir>",
			Run:       e.cdCmd,
		},
		{
			Name:      "pwd",
			MaxArgs:   0,
			NeedsConn: true,
			Summary:   "print the remote directory",
			Usage:     "pwd",
			Run:       e.pwdCmd,
		},
		{
			Name:      "mput",
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "upload all local files matching a regex",
			Usage:     "mput <selection regex>",
			Run:       e.mputCmd,
		},
		{
			Name:      "mget",
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "download all remote files matching a regex",
			Usage:     "mget <selection regex>",
			Run:       e.mgetCmd,
		},
		{
			Name:      "mrm",
			MinArgs:   1,
			MaxArgs:   1,
			NeedsConn: true,
			Summary:   "delete all remote files matching a regex",
			Usage:     "mrm <selection regex>",
			Run:       e.mrmCmd,
		},
		{
			Name:      "sync",
			MaxArgs:   1,
			Flags:     []string{"-n"},
			NeedsConn: true,
			Summary:   "upload all python files from the source dir",
			Usage:     "sync [-n] [<local dir>]",
			Run:       e.syncCmd,
		},
	}
}

func (e *Env) lsCmd(ctx context.Context, inv core.Invocation) (string, error) {
	dir := inv.Session.Cwd()
	if len(inv.Args) == 1 {
		dir = inv.Session.Resolve(inv.Args[0])
	}
	return inv.Session.Conn().Ls(ctx, dir, inv.Flag("-l"))
}

func (e *Env) catCmd(ctx context.Context, inv core.Invocation) (string, error) {
	return inv.Session.Conn().Cat(ctx, inv.Session.Resolve(inv.Args[0]))
}

func (e *Env) putCmd(ctx context.Context, inv core.Invocation) (string, error) {
	local, err := e.findLocal(inv.Args[0])
	if err != nil {
		return "", err
	}
	remote := filepath.Base(local)
	if len(inv.Args) == 2 {
		remote = inv.Args[1]
	}
	remote = inv.Session.Resolve(remote)
	if err := inv.Session.Conn().Put(ctx, local, remote); err != nil {
		return "", err
	}
	return fmt.Sprintf("copied %s to %s", local, remote), nil
}

func (e *Env) getCmd(ctx context.Context, inv core.Invocation) (string, error) {
	remote := inv.Session.Resolve(inv.Args[0])
	local := path.Base(remote)
	if len(inv.Args) == 2 {
		local = inv.Args[1]
	}
	if err := inv.Session.Conn().Get(ctx, remote, local); err != nil {
		return "", err
	}
	return fmt.Sprintf("copied %s to %s", remote, local), nil
}

func (e *Env) rmCmd(ctx context.Context, inv core.Invocation) (string, error) {
	remote := inv.Session.Resolve(inv.Args[0])
	if err := inv.Session.Conn().Rm(ctx, remote); err != nil {
		return "", err
	}
	return "removed " + remote, nil
}

func (e *Env) mdCmd(ctx context.Context, inv core.Invocation) (string, error) {
	remote := inv.Session.Resolve(inv.Args[0])
	if err := inv.Session.Conn().Mkdir(ctx, remote); err != nil {
		return "", err
	}
	return "created " + remote, nil
}

func (e *Env) rmdirCmd(ctx context.Context, inv core.Invocation) (string, error) {
	remote := inv.Session.Resolve(inv.Args[0])
	if err := inv.Session.Conn().Rmdir(ctx, remote); err != nil {
		return "", err
	}
	return "removed " + remote, nil
}

// cdCmd проверяет директорию пробным листингом и только потом меняет
// cwd сессии: рабочая директория отслеживается клиентом.
func (e *Env) cdCmd(ctx context.Context, inv core.Invocation) (string, error) {
	target := inv.Session.Resolve(inv.Args[0])
	if _, err := inv.Session.Conn().Ls(ctx, target, false); err != nil {
		return "", err
	}
	inv.Session.SetCwd(target)
	return "", nil
}

func (e *Env) pwdCmd(ctx context.Context, inv core.Invocation) (string, error) {
	return inv.Session.Cwd(), nil
}

func (e *Env) mputCmd(ctx context.Context, inv core.Invocation) (string, error) {
	re, err := regexp.Compile(inv.Args[0])
	if err != nil {
		return "", fmt.Errorf("bad selection regex: %w", err)
	}
	names, err := localFiles(".")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	n := 0
	for _, name := range names {
		if !re.MatchString(name) {
			continue
		}
		remote := inv.Session.Resolve(name)
		if err := inv.Session.Conn().Put(ctx, name, remote); err != nil {
			return b.String(), err
		}
		fmt.Fprintf(&b, "put %s\n", name)
		n++
	}
	if n == 0 {
		return "no local files matched", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Env) mgetCmd(ctx context.Context, inv core.Invocation) (string, error) {
	re, err := regexp.Compile(inv.Args[0])
	if err != nil {
		return "", fmt.Errorf("bad selection regex: %w", err)
	}
	names, err := remoteFiles(ctx, inv)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	n := 0
	for _, name := range names {
		if !re.MatchString(name) {
			continue
		}
		if err := inv.Session.Conn().Get(ctx, inv.Session.Resolve(name), name); err != nil {
			return b.String(), err
		}
		fmt.Fprintf(&b, "get %s\n", name)
		n++
	}
	if n == 0 {
		return "no remote files matched", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Env) mrmCmd(ctx context.Context, inv core.Invocation) (string, error) {
	re, err := regexp.Compile(inv.Args[0])
	if err != nil {
		return "", fmt.Errorf("bad selection regex: %w", err)
	}
	names, err := remoteFiles(ctx, inv)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	n := 0
	for _, name := range names {
		if !re.MatchString(name) {
			continue
		}
		if err := inv.Session.Conn().Rm(ctx, inv.Session.Resolve(name)); err != nil {
			return b.String(), err
		}
		fmt.Fprintf(&b, "rm %s\n", name)
		n++
	}
	if n == 0 {
		return "no remote files matched", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Env) syncCmd(ctx context.Context, inv core.Invocation) (string, error) {
	dir := e.SrcDir
	if len(inv.Args) == 1 {
		dir = inv.Args[0]
	}
	if dir == "" {
		return "", fmt.Errorf("no source directory configured")
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.py"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "no python files in " + dir, nil
	}
	dry := inv.Flag("-n")
	var b strings.Builder
	for _, local := range matches {
		remote := inv.Session.Resolve(filepath.Base(local))
		if dry {
			fmt.Fprintf(&b, "would put %s as %s\n", local, remote)
			continue
		}
		if err := inv.Session.Conn().Put(ctx, local, remote); err != nil {
			return b.String(), err
		}
		fmt.Fprintf(&b, "put %s as %s\n", local, remote)
	}
	if !dry {
		fmt.Fprintf(&b, "synced %d files", len(matches))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// remoteFiles возвращает имена файлов в текущей удаленной директории.
// ampy печатает по одному абсолютному пути на строку.
func remoteFiles(ctx context.Context, inv core.Invocation) ([]string, error) {
	out, err := inv.Session.Conn().Ls(ctx, inv.Session.Cwd(), false)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, path.Base(line))
	}
	return names, nil
}
