package history

import (
	"context"
	"time"
)

// Entry — одна выполненная строка shell вместе с исходом.
type Entry struct {
	Line      string
	Status    string
	ErrorCode string
	TS        time.Time
}

// Store описывает операции персистентной истории команд.
type Store interface {
	Save(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
