package device

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var errUnsupportedTarget = errors.New("only serial targets are supported")

// ParseTarget переводит адрес платы в имя последовательного порта.
// Принимаются формы "ser:<порт>" и голое имя порта; короткое имя
// ("ttyUSB0") дополняется до "/dev/ttyUSB0" вне Windows. Адреса
// tn: и ws: требуют реализации протокола платы и не поддерживаются.
func ParseTarget(target string) (string, error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", errors.New("empty target")
	}
	if strings.HasPrefix(t, "tn:") || strings.HasPrefix(t, "ws:") {
		return "", fmt.Errorf("%s: %w", t, errUnsupportedTarget)
	}
	t = strings.TrimPrefix(t, "ser:")
	if t == "" {
		return "", errors.New("empty serial port")
	}
	if strings.HasPrefix(t, "/") || strings.HasPrefix(strings.ToUpper(t), "COM") {
		return t, nil
	}
	if runtime.GOOS == "windows" {
		return t, nil
	}
	return "/dev/" + t, nil
}
