// Package commands определяет набор команд shell и собирает из них
// реестр. Семантика команд повторяет оригинальный инструментарий:
// файловые операции и запуск делегируются ampy, компиляция mpy-cross,
// прошивка esptool.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"mpsh/internal/core"
	"mpsh/internal/device"
	"mpsh/internal/history"
)

// Env собирает зависимости обработчиков команд.
type Env struct {
	Dial         device.DialFunc
	ListPorts    func() ([]device.PortInfo, error)
	Compiler     *device.Compiler
	Flasher      *device.Flasher
	DefaultPort  string
	SrcDir       string
	History      history.Store
	HistoryLimit int
	Version      string
}

// NewRegistry создает реестр со всеми командами shell.
func NewRegistry(env *Env) (*core.Registry, error) {
	reg := core.NewRegistry()
	groups := [][]*core.Command{
		env.connCommands(),
		env.fileCommands(),
		env.localCommands(),
		env.execCommands(),
		env.compileCommands(),
		env.miscCommands(),
	}
	for _, group := range groups {
		for _, cmd := range group {
			if err := reg.Register(cmd); err != nil {
				return nil, fmt.Errorf("register %s: %w", cmd.Name, err)
			}
		}
	}
	return reg, nil
}

// findLocal ищет локальный файл: сначала по указанному пути, затем
// в директории исходников.
func (e *Env) findLocal(name string) (string, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}
	if e.SrcDir != "" {
		candidate := filepath.Join(e.SrcDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find %s", name)
}
