package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConnected возвращается при обращении к плате без открытого
// соединения.
var ErrNotConnected = errors.New("not connected")

// Conn — открытое соединение с платой. Сам протокол обмена полностью
// делегирован внешнему инструменту; интерфейс описывает только
// операции, которые нужны командам shell.
type Conn interface {
	// Target возвращает адрес платы (имя последовательного порта).
	Target() string
	// Ls возвращает листинг удаленной директории.
	Ls(ctx context.Context, dir string, long bool) (string, error)
	// Cat возвращает содержимое удаленного файла.
	Cat(ctx context.Context, remote string) (string, error)
	// Put копирует локальный файл на плату.
	Put(ctx context.Context, local, remote string) error
	// Get копирует файл с платы в локальный путь.
	Get(ctx context.Context, remote, local string) error
	// Rm удаляет удаленный файл.
	Rm(ctx context.Context, remote string) error
	// Mkdir создает удаленную директорию.
	Mkdir(ctx context.Context, remote string) error
	// Rmdir удаляет удаленную директорию вместе с содержимым.
	Rmdir(ctx context.Context, remote string) error
	// Run исполняет локальный скрипт на плате и возвращает его вывод.
	Run(ctx context.Context, local string) (string, error)
	// Reset перезагружает плату.
	Reset(ctx context.Context) error
	// Close закрывает соединение.
	Close() error
}

// DialFunc открывает соединение с платой по адресу.
type DialFunc func(ctx context.Context, target string) (Conn, error)

// ToolError описывает сбой внешнего инструмента. Частичный stdout
// сохраняется, чтобы front-end мог показать то, что успело прийти.
type ToolError struct {
	Tool   string
	Op     string
	Output string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Tool, e.Op)
	if detail := firstLine(e.Stderr); detail != "" {
		return msg + ": " + detail
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
