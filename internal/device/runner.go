package device

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner запускает внешнюю команду и возвращает каналы вывода.
// За интерфейсом прячется os/exec, чтобы адаптеры можно было
// тестировать без установленных инструментов.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner исполняет команды через os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	var out, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return out.String(), errBuf.String(), err
}
