package core

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job описывает периодическую фоновую задачу сервера.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler запускает задачи с фиксированным интервалом. Используется для
// обслуживания истории команд (ретеншен).
type Scheduler struct {
	interval time.Duration
	jobs     []Job
	log      *slog.Logger
	wg       sync.WaitGroup
}

// NewScheduler создает scheduler с заданным интервалом. Неположительный
// интервал заменяется часом.
func NewScheduler(interval time.Duration, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{interval: interval, log: log}
}

// Add добавляет задачу в расписание.
func (s *Scheduler) Add(job Job) {
	if job.Run == nil {
		return
	}
	s.jobs = append(s.jobs, job)
}

// Start запускает scheduler до отмены контекста.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			s.wg.Wait()
			return
		case <-ticker.C:
			for _, job := range s.jobs {
				job := job
				s.wg.Add(1)
				go func() {
					defer s.wg.Done()
					if err := job.Run(ctx); err != nil {
						s.log.Warn("scheduled job failed", "job", job.Name, "err", err)
					}
				}()
			}
		}
	}
}
