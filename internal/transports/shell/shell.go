// Package shell реализует интерактивный front-end: цикл чтения строк
// вокруг диспетчера. Никакой dispatch-логики здесь нет, только ввод,
// вывод и приглашение.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"mpsh/internal/core"
)

// Shell читает строки, отдает их диспетчеру и печатает результаты.
type Shell struct {
	disp    *core.Dispatcher
	prompt  string
	version string
	in      io.Reader
	out     io.Writer
	errw    io.Writer
}

// New создает shell над стандартными потоками.
func New(disp *core.Dispatcher, prompt, version string) *Shell {
	return NewIO(disp, prompt, version, os.Stdin, os.Stdout, os.Stderr)
}

// NewIO создает shell с заданными потоками ввода-вывода.
func NewIO(disp *core.Dispatcher, prompt, version string, in io.Reader, out, errw io.Writer) *Shell {
	if prompt == "" {
		prompt = "mpsh"
	}
	return &Shell{disp: disp, prompt: prompt, version: version, in: in, out: out, errw: errw}
}

// Run ведет интерактивный цикл до команды exit или конца ввода.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "** mpsh %s - MicroPython board shell **\n", s.version)
	fmt.Fprintln(s.out, "type 'help' or '?' to list commands")

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprintf(s.out, "%s [%s]> ", s.prompt, s.disp.Session().Cwd())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "?" {
			line = "help"
		}
		res := s.disp.Dispatch(ctx, line)
		Render(s.out, s.errw, res)
		if res.ErrorCode == core.CodeExit {
			return nil
		}
	}
}

// Render печатает результат: вывод в out, сообщение об ошибке в errw.
// Используется и one-shot CLI, чтобы оба текстовых front-end
// показывали результаты одинаково.
func Render(out, errw io.Writer, res core.Result) {
	if res.Output != "" {
		fmt.Fprintln(out, res.Output)
	}
	if res.Status == core.StatusError {
		fmt.Fprintf(errw, "error: %s\n", res.Message)
	}
}
