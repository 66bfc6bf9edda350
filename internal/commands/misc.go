package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"mpsh/internal/core"
)

func (e *Env) miscCommands() []*core.Command {
	return []*core.Command{
		{
			Name:    "help",
			MaxArgs: 1,
			Summary: "list commands or show help for one command",
			Usage:   "help [<command>]",
			Run:     e.helpCmd,
		},
		{
			Name:    "version",
			MaxArgs: 0,
			Summary: "print the shell version",
			Usage:   "version",
			Run:     e.versionCmd,
		},
		{
			Name:    "sysinfo",
			MaxArgs: 0,
			Summary: "show information about this machine",
			Usage:   "sysinfo",
			Run:     e.sysinfoCmd,
		},
		{
			Name:    "history",
			MaxArgs: 1,
			Summary: "show recently executed commands",
			Usage:   "history [<count>]",
			Run:     e.historyCmd,
		},
		{
			Name:    "echo",
			MaxArgs: -1,
			Summary: "print the arguments back",
			Usage:   "echo [<text>...]",
			Run:     e.echoCmd,
		},
		{
			Name:    "exit",
			Aliases: []string{"quit"},
			MaxArgs: 0,
			Summary: "leave the shell",
			Usage:   "exit",
			Run:     e.exitCmd,
		},
	}
}

func (e *Env) helpCmd(ctx context.Context, inv core.Invocation) (string, error) {
	if len(inv.Args) == 1 {
		cmd, err := inv.Registry.Lookup(inv.Args[0])
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s\nusage: %s", cmd.Summary, cmd.Usage)
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&b, "\naliases: %s", strings.Join(cmd.Aliases, ", "))
		}
		return b.String(), nil
	}

	var b strings.Builder
	b.WriteString("available commands:\n")
	for _, cmd := range inv.Registry.Commands() {
		name := cmd.Name
		if len(cmd.Aliases) > 0 {
			name += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "  %-18s %s\n", name, cmd.Summary)
	}
	b.WriteString("type 'help <command>' for details")
	return b.String(), nil
}

func (e *Env) versionCmd(ctx context.Context, inv core.Invocation) (string, error) {
	return e.Version, nil
}

func (e *Env) sysinfoCmd(ctx context.Context, inv core.Invocation) (string, error) {
	hInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("host info: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("memory info: %w", err)
	}
	ld, err := load.AvgWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("load info: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "host:    %s (%s %s, kernel %s)\n",
		hInfo.Hostname, hInfo.Platform, hInfo.PlatformVersion, hInfo.KernelVersion)
	fmt.Fprintf(&b, "boot:    %s\n", time.Unix(int64(hInfo.BootTime), 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "memory:  %d of %d MiB used (%.1f%%)\n",
		vm.Used/1024/1024, vm.Total/1024/1024, vm.UsedPercent)
	fmt.Fprintf(&b, "load:    %.2f %.2f %.2f", ld.Load1, ld.Load5, ld.Load15)
	return b.String(), nil
}

func (e *Env) historyCmd(ctx context.Context, inv core.Invocation) (string, error) {
	if e.History == nil {
		return "", fmt.Errorf("history is not available")
	}
	limit := e.HistoryLimit
	if len(inv.Args) == 1 {
		n, err := strconv.Atoi(inv.Args[0])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("bad count: %s", inv.Args[0])
		}
		limit = n
	}
	entries, err := e.History.Recent(ctx, limit)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "history is empty", nil
	}
	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "%s  [%s] %s\n", entry.TS.Format("2006-01-02 15:04:05"), entry.Status, entry.Line)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Env) echoCmd(ctx context.Context, inv core.Invocation) (string, error) {
	return strings.Join(inv.Args, " "), nil
}

func (e *Env) exitCmd(ctx context.Context, inv core.Invocation) (string, error) {
	if err := inv.Session.Close(); err != nil {
		return "", err
	}
	return "bye", core.ErrExit
}
