package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mpsh/internal/core"
	"mpsh/internal/device"
)

func (e *Env) connCommands() []*core.Command {
	return []*core.Command{
		{
			Name:    "open",
			Aliases: []string{"connect"},
			MinArgs: 0,
			MaxArgs: 1,
			Summary: "open a connection to the board",
			Usage:   "open [ser:<port> | <port>]",
			Run:     e.openCmd,
		},
		{
			Name:      "close",
			Aliases:   []string{"disconnect"},
			MaxArgs:   0,
			NeedsConn: true,
			Summary:   "close the connection to the board",
			Usage:     "close",
			Run:       e.closeCmd,
		},
		{
			Name:    "ports",
			MaxArgs: 0,
			Summary: "list serial ports on this machine",
			Usage:   "ports",
			Run:     e.portsCmd,
		},
		{
			Name:    "erase",
			MinArgs: 0,
			MaxArgs: 1,
			Summary: "erase the board flash with esptool",
			Usage:   "erase [<port>]",
			Run:     e.eraseCmd,
		},
		{
			Name:    "flash",
			MinArgs: 1,
			MaxArgs: 2,
			Summary: "write a firmware image with esptool",
			Usage:   "flash <firmware.bin> [<port>]",
			Run:     e.flashCmd,
		},
	}
}

func (e *Env) openCmd(ctx context.Context, inv core.Invocation) (string, error) {
	target := e.DefaultPort
	if len(inv.Args) == 1 {
		target = inv.Args[0]
	}
	conn, err := e.Dial(ctx, target)
	if err != nil {
		return "", err
	}
	inv.Session.SetConn(conn)
	return fmt.Sprintf("connected to %s", conn.Target()), nil
}

func (e *Env) closeCmd(ctx context.Context, inv core.Invocation) (string, error) {
	target := inv.Session.Conn().Target()
	if err := inv.Session.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("disconnected from %s", target), nil
}

func (e *Env) portsCmd(ctx context.Context, inv core.Invocation) (string, error) {
	ports, err := e.ListPorts()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "no serial ports found", nil
	}
	var b strings.Builder
	for _, p := range ports {
		mark := "     "
		if p.IsUSB {
			mark = "usb  "
		}
		fmt.Fprintf(&b, "%s%s", mark, p.Name)
		if p.Description != "" {
			fmt.Fprintf(&b, "  %s", p.Description)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// flashPort выбирает порт для esptool: аргумент, затем порт по
// умолчанию, затем автоподбор. Прошивать можно только при закрытом
// соединении, иначе порт занят ampy.
func (e *Env) flashPort(inv core.Invocation, arg string) (string, error) {
	if inv.Session.Connected() {
		return "", errors.New("close the connection before flashing")
	}
	target := arg
	if target == "" {
		target = e.DefaultPort
	}
	if target == "" {
		info, err := device.FirstUSBPort()
		if err != nil {
			return "", err
		}
		return info.Name, nil
	}
	return device.ParseTarget(target)
}

func (e *Env) eraseCmd(ctx context.Context, inv core.Invocation) (string, error) {
	arg := ""
	if len(inv.Args) == 1 {
		arg = inv.Args[0]
	}
	port, err := e.flashPort(inv, arg)
	if err != nil {
		return "", err
	}
	return e.Flasher.Erase(ctx, port)
}

func (e *Env) flashCmd(ctx context.Context, inv core.Invocation) (string, error) {
	binfile := inv.Args[0]
	if _, err := os.Stat(binfile); err != nil {
		return "", fmt.Errorf("could not find %s", binfile)
	}
	arg := ""
	if len(inv.Args) == 2 {
		arg = inv.Args[1]
	}
	port, err := e.flashPort(inv, arg)
	if err != nil {
		return "", err
	}
	return e.Flasher.WriteFirmware(ctx, port, binfile)
}
