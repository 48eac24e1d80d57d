// Package hosts содержит адаптеры "выполни в главном потоке" для
// хост-программ. Два варианта: MainLoop для хостов с очередью отложенных
// вызовов (таймер, queued invocation) и DirectRunner для хостов с
// синхронным переходом в главный поток. Оба гарантируют, что код модулей
// не выполняется в сетевой горутине.
package hosts

import (
	"context"
	"log/slog"

	"skyhook/internal/core"
	"skyhook/internal/events"
)

const defaultQueueSize = 64

// MainLoop — очередь вызовов главного потока. Встраивающий код качает ее из
// главного потока хоста: либо циклом Run, либо вызовами Pump из тика
// таймера хоста.
type MainLoop struct {
	queue chan func()
	log   *slog.Logger
}

// NewMainLoop создает очередь на queueSize вызовов (по умолчанию 64).
func NewMainLoop(queueSize int, log *slog.Logger) *MainLoop {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &MainLoop{queue: make(chan func(), queueSize), log: log}
}

// Schedule ставит вызов в очередь, не блокируя вызывающую горутину. Если
// очередь переполнена, вызов отбрасывается: ожидающий мост завершится по
// таймауту.
func (l *MainLoop) Schedule(fn func()) {
	if fn == nil {
		return
	}
	select {
	case l.queue <- fn:
	default:
		l.log.Warn("main loop queue is full, dropping scheduled call")
	}
}

// Pump выполняет один отложенный вызов, если он есть. Возвращает, был ли
// вызов выполнен. Предназначен для тика таймера хоста.
func (l *MainLoop) Pump() bool {
	select {
	case fn := <-l.queue:
		fn()
		return true
	default:
		return false
	}
}

// Run качает очередь до отмены контекста. Вызывается из главной горутины,
// когда процесс сам владеет главным потоком (standalone-сервер).
func (l *MainLoop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Bind подписывает очередь на события execute: команды моста будут
// выполняться исполнителем внутри главного потока.
func (l *MainLoop) Bind(emitter *events.Emitter, executor *core.Executor) {
	emitter.Subscribe(events.TopicExecute, func(ev events.Event) {
		l.Schedule(func() {
			executor.Execute(ev.Name, ev.Parameters, ev.Module)
		})
	})
}

// DirectRunner — адаптер для хостов с блокирующим примитивом перехода в
// главный поток ("выполни и дождись"). Примитив передается хостом; nil
// означает прямой вызов, что допустимо только если встраивающий код сам
// гарантирует главный поток.
type DirectRunner struct {
	run func(fn func())
}

// NewDirectRunner создает адаптер вокруг примитива хоста.
func NewDirectRunner(run func(fn func())) *DirectRunner {
	if run == nil {
		run = func(fn func()) { fn() }
	}
	return &DirectRunner{run: run}
}

// Bind подписывает адаптер на события execute. Контракт моста сохраняется:
// исполнитель пишет результат в слот, диспетчер немедленно его забирает.
func (d *DirectRunner) Bind(emitter *events.Emitter, executor *core.Executor) {
	emitter.Subscribe(events.TopicExecute, func(ev events.Event) {
		d.run(func() {
			executor.Execute(ev.Name, ev.Parameters, ev.Module)
		})
	})
}
