// Package app собирает зависимости сервера skyhook в одно приложение.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"skyhook/internal/config"
	"skyhook/internal/core"
	"skyhook/internal/events"
	"skyhook/internal/hosts"
	"skyhook/internal/modules"
	"skyhook/internal/server"
	"skyhook/internal/storage"
	"skyhook/internal/storage/sqlite"
)

// App агрегирует реестр, сервер, адаптер главного потока и хранилище истории.
type App struct {
	Registry  *core.Registry
	Emitter   *events.Emitter
	Server    *server.Server
	MainLoop  *hosts.MainLoop
	Store     storage.Store
	Scheduler *core.Scheduler
	Config    config.Config

	log        *slog.Logger
	terminated chan struct{}
	termOnce   sync.Once
}

// New строит приложение: реестр с модулями из конфига, сервер и, если задан
// путь SQLite, историю команд с ретеншеном.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	registry := core.NewRegistry(modules.Builtins(), log)
	// Модуль core загружается всегда и первым: is_online должен работать
	// сразу после старта.
	registry.Load("core", true)
	for _, name := range cfg.Modules {
		if name == "core" {
			continue
		}
		registry.Load(name, true)
	}

	emitter := events.New()
	srv := server.New(registry, emitter, log, server.Options{
		HostProgram:           cfg.Server.HostProgram,
		Port:                  cfg.Server.Port,
		UseMainThreadExecutor: cfg.Server.UseMainThreadExecutor,
		Timeout:               time.Duration(cfg.Server.TimeoutMS) * time.Millisecond,
		PollInterval:          time.Duration(cfg.Server.PollIntervalMS) * time.Millisecond,
		ShutdownTimeout:       time.Duration(cfg.Server.ShutdownTimeoutS) * time.Second,
	})

	a := &App{
		Registry:   registry,
		Emitter:    emitter,
		Server:     srv,
		Config:     cfg,
		log:        log,
		terminated: make(chan struct{}),
	}
	emitter.Subscribe(events.TopicTerminated, func(events.Event) {
		a.termOnce.Do(func() { close(a.terminated) })
	})

	if cfg.Server.UseMainThreadExecutor {
		loop := hosts.NewMainLoop(0, log)
		loop.Bind(emitter, srv.Executor())
		a.MainLoop = loop
	}

	if cfg.SQLite.Path != "" {
		st, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.Store = st
		emitter.Subscribe(events.TopicCommand, func(ev events.Event) {
			rec := storage.CommandRecord{
				Function:  ev.Name,
				Module:    ev.Module,
				Success:   ev.Success,
				RequestID: ev.RequestID,
			}
			if err := st.SaveCommand(context.Background(), rec); err != nil {
				log.Warn("failed to save command record", "err", err)
			}
		})

		sched := core.NewScheduler(time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second, log)
		if days := cfg.SQLite.RetentionDays; days > 0 {
			sched.Add(core.Job{Name: "history_retention", Run: func(ctx context.Context) error {
				cutoff := time.Now().AddDate(0, 0, -days)
				pruned, err := st.PruneBefore(ctx, cutoff)
				if err != nil {
					return err
				}
				if pruned > 0 {
					log.Info("pruned command history", "records", pruned)
				}
				return nil
			}})
		}
		a.Scheduler = sched
	}

	return a, nil
}

// Run запускает листенер и фоновые работы и блокируется до отмены контекста
// или команды SKY_SHUTDOWN. Очередь главного потока качается из горутины,
// вызвавшей Run: в standalone-процессе она и есть главный поток.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-a.terminated:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := a.Server.Start(ctx); err != nil {
		return err
	}
	if a.Scheduler != nil {
		go a.Scheduler.Start(ctx)
	}

	if a.MainLoop != nil {
		a.MainLoop.Run(ctx)
	} else {
		<-ctx.Done()
	}

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.log.Warn("failed to close history store", "err", err)
		}
	}
	return nil
}
