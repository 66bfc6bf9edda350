package device

import (
	"context"
	"fmt"
	"strings"
)

// Dialer открывает соединения с платой через внешний инструмент ampy.
// Каждая операция — отдельный запуск "ampy -p <порт> <оп> <аргументы>",
// как и в оригинальном инструментарии: собственного протокола у shell нет.
type Dialer struct {
	Bin string
	Run Runner
}

// Dial открывает соединение и проверяет его пробным листингом корня.
// Пустой target означает автоподбор первого USB-порта.
func (d *Dialer) Dial(ctx context.Context, target string) (Conn, error) {
	port := ""
	if strings.TrimSpace(target) == "" {
		info, err := FirstUSBPort()
		if err != nil {
			return nil, err
		}
		port = info.Name
	} else {
		parsed, err := ParseTarget(target)
		if err != nil {
			return nil, err
		}
		port = parsed
	}

	conn := &ampyConn{bin: d.bin(), port: port, run: d.runner()}
	if _, err := conn.Ls(ctx, "/", false); err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}
	return conn, nil
}

func (d *Dialer) bin() string {
	if d.Bin != "" {
		return d.Bin
	}
	return "ampy"
}

func (d *Dialer) runner() Runner {
	if d.Run != nil {
		return d.Run
	}
	return ExecRunner{}
}

// ampyConn реализует Conn поверх запуска ampy.
type ampyConn struct {
	bin  string
	port string
	run  Runner
}

func (c *ampyConn) Target() string {
	return c.port
}

func (c *ampyConn) exec(ctx context.Context, op string, args ...string) (string, error) {
	full := append([]string{"-p", c.port, op}, args...)
	out, stderr, err := c.run.Run(ctx, c.bin, full...)
	if err != nil {
		return "", &ToolError{Tool: c.bin, Op: op, Output: out, Stderr: stderr, Err: err}
	}
	if strings.TrimSpace(stderr) != "" {
		return "", &ToolError{Tool: c.bin, Op: op, Output: out, Stderr: stderr}
	}
	return out, nil
}

func (c *ampyConn) Ls(ctx context.Context, dir string, long bool) (string, error) {
	args := []string{}
	if long {
		args = append(args, "-l")
	}
	args = append(args, dir)
	return c.exec(ctx, "ls", args...)
}

func (c *ampyConn) Cat(ctx context.Context, remote string) (string, error) {
	// ampy get без второго аргумента печатает файл в stdout.
	return c.exec(ctx, "get", remote)
}

func (c *ampyConn) Put(ctx context.Context, local, remote string) error {
	_, err := c.exec(ctx, "put", local, remote)
	return err
}

func (c *ampyConn) Get(ctx context.Context, remote, local string) error {
	_, err := c.exec(ctx, "get", remote, local)
	return err
}

func (c *ampyConn) Rm(ctx context.Context, remote string) error {
	_, err := c.exec(ctx, "rm", remote)
	return err
}

func (c *ampyConn) Mkdir(ctx context.Context, remote string) error {
	_, err := c.exec(ctx, "mkdir", remote)
	return err
}

func (c *ampyConn) Rmdir(ctx context.Context, remote string) error {
	_, err := c.exec(ctx, "rmdir", remote)
	return err
}

func (c *ampyConn) Run(ctx context.Context, local string) (string, error) {
	return c.exec(ctx, "run", local)
}

func (c *ampyConn) Reset(ctx context.Context) error {
	_, err := c.exec(ctx, "reset")
	return err
}

// Close ничего не освобождает: порт не держится открытым между
// операциями, соединение — логическое.
func (c *ampyConn) Close() error {
	return nil
}
