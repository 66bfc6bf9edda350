package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mpsh/internal/commands"
	"mpsh/internal/config"
	"mpsh/internal/core"
	"mpsh/internal/device"
	"mpsh/internal/history"
	"mpsh/internal/history/sqlite"
)

// App агрегирует зависимости shell: реестр команд, диспетчер,
// сессию и хранилище истории.
type App struct {
	Config     config.Config
	Log        *slog.Logger
	Registry   *core.Registry
	Session    *core.Session
	Dispatcher *core.Dispatcher
	History    history.Store
}

// New строит приложение из конфигурации. Недоступная история не
// мешает работе shell, остальные ошибки фатальны.
func New(cfg config.Config, log *slog.Logger, version string) (*App, error) {
	var store history.Store
	if cfg.History.Path != "" {
		st, err := openHistory(cfg.History.Path)
		if err != nil {
			log.Warn("history disabled", "path", cfg.History.Path, "err", err)
		} else {
			store = st
		}
	}

	dialer := &device.Dialer{Bin: cfg.Tools.Ampy}
	env := &commands.Env{
		Dial:         dialer.Dial,
		ListPorts:    device.ListPorts,
		Compiler:     &device.Compiler{Bin: cfg.Tools.MpyCross},
		Flasher:      &device.Flasher{Bin: cfg.Tools.Esptool},
		DefaultPort:  cfg.Device.Port,
		SrcDir:       cfg.Source.Dir,
		History:      store,
		HistoryLimit: cfg.History.Limit,
		Version:      version,
	}

	reg, err := commands.NewRegistry(env)
	if err != nil {
		return nil, fmt.Errorf("build command registry: %w", err)
	}

	sess := core.NewSession()
	disp := core.NewDispatcher(reg, sess, log, &historyRecorder{store: store, log: log})

	return &App{
		Config:     cfg,
		Log:        log,
		Registry:   reg,
		Session:    sess,
		Dispatcher: disp,
		History:    store,
	}, nil
}

func openHistory(path string) (history.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return sqlite.Open(path)
}

// Close высвобождает ресурсы приложения.
func (a *App) Close() error {
	_ = a.Session.Close()
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}

// historyRecorder пишет каждую выполненную строку в хранилище.
// Сбой записи не должен ломать выполнение команды.
type historyRecorder struct {
	store history.Store
	log   *slog.Logger
}

func (r *historyRecorder) Record(ctx context.Context, line string, res core.Result) {
	if r.store == nil {
		return
	}
	err := r.store.Save(ctx, history.Entry{
		Line:      line,
		Status:    res.Status,
		ErrorCode: res.ErrorCode,
	})
	if err != nil {
		r.log.Warn("save history", "err", err)
	}
}
