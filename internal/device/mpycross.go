package device

import (
	"context"
	"strings"
)

// Compiler компилирует python-файл в байткод внешним mpy-cross.
// Сам кросс-компилятор не реализуется, только вызывается.
type Compiler struct {
	Bin string
	Run Runner
}

// Compile компилирует src в dst. Пустой dst означает имя src
// с расширением .mpy.
func (c *Compiler) Compile(ctx context.Context, src, dst string) (string, error) {
	if dst == "" {
		dst = MpyName(src)
	}
	bin := c.Bin
	if bin == "" {
		bin = "mpy-cross"
	}
	run := c.Run
	if run == nil {
		run = ExecRunner{}
	}
	out, stderr, err := run.Run(ctx, bin, "-o", dst, src)
	if err != nil {
		return "", &ToolError{Tool: bin, Op: "compile", Output: out, Stderr: stderr, Err: err}
	}
	if strings.TrimSpace(stderr) != "" {
		return "", &ToolError{Tool: bin, Op: "compile", Output: out, Stderr: stderr}
	}
	return dst, nil
}

// MpyName меняет расширение файла на .mpy.
func MpyName(src string) string {
	if i := strings.LastIndexByte(src, '.'); i > 0 {
		return src[:i] + ".mpy"
	}
	return src + ".mpy"
}
