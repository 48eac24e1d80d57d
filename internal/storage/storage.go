// Package storage описывает хранилище истории выполненных команд.
package storage

import (
	"context"
	"time"
)

// CommandRecord фиксирует одну выполненную команду.
type CommandRecord struct {
	Function  string
	Module    string
	Success   bool
	RequestID string
	TS        time.Time
}

// Store описывает операции хранилища истории.
type Store interface {
	SaveCommand(ctx context.Context, rec CommandRecord) error
	Recent(ctx context.Context, limit int) ([]CommandRecord, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}
