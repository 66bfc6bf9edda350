package device

import (
	"context"
	"strings"
)

// Адрес, по которому прошивка ESP32 пишется во flash.
const flashOffset = "0x1000"

// Flasher стирает и прошивает flash платы внешним esptool.
// Операции выполняются без открытого соединения: во время прошивки
// порт должен быть свободен.
type Flasher struct {
	Bin string
	Run Runner
}

func (f *Flasher) bin() string {
	if f.Bin != "" {
		return f.Bin
	}
	return "esptool.py"
}

func (f *Flasher) runner() Runner {
	if f.Run != nil {
		return f.Run
	}
	return ExecRunner{}
}

func (f *Flasher) exec(ctx context.Context, op string, args ...string) (string, error) {
	out, stderr, err := f.runner().Run(ctx, f.bin(), args...)
	if err != nil {
		return "", &ToolError{Tool: f.bin(), Op: op, Output: out, Stderr: stderr, Err: err}
	}
	lower := strings.ToLower(out)
	if strings.Contains(lower, "fatal error") || strings.Contains(lower, "invalid head of packet") {
		return "", &ToolError{Tool: f.bin(), Op: op, Output: out, Stderr: firstLine(out)}
	}
	return out, nil
}

// Erase стирает flash платы на указанном порту.
func (f *Flasher) Erase(ctx context.Context, port string) (string, error) {
	return f.exec(ctx, "erase_flash", "--chip", "esp32", "--port", port, "erase_flash")
}

// WriteFirmware пишет bin-файл прошивки во flash.
func (f *Flasher) WriteFirmware(ctx context.Context, port, binfile string) (string, error) {
	return f.exec(ctx, "write_flash", "--chip", "esp32", "--port", port, "write_flash", flashOffset, binfile)
}
