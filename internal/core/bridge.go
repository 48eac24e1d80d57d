package core

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"skyhook/internal/events"
	"skyhook/pkg/protocol"
)

// Значения по умолчанию для ожидания результата из главного потока.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
)

// Bridge переносит выполнение команды из сетевой горутины в главный поток
// хост-программы. Точка встречи — одноместный слот: он очищается перед
// каждой отправкой и заполняется ровно одним результатом той стороной,
// которая завершила команду. Одновременно через мост может идти только одна
// команда; вызывающая сторона обязана сериализовать Dispatch.
type Bridge struct {
	emitter  *events.Emitter
	timeout  time.Duration
	interval time.Duration
	log      *slog.Logger

	slot atomic.Pointer[protocol.Result]
}

// NewBridge создает мост. Нулевые timeout и interval заменяются значениями
// по умолчанию (10 с и 50 мс).
func NewBridge(emitter *events.Emitter, timeout, interval time.Duration, log *slog.Logger) *Bridge {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{emitter: emitter, timeout: timeout, interval: interval, log: log}
}

// Dispatch выполняется в сетевой горутине: убирает служебный ключ _Module из
// параметров, публикует событие execute и опрашивает слот, пока результат не
// появится или не истечет таймаут. По таймауту в слот ставится результат
// TIMEOUT; запоздавший настоящий результат при этом отбрасывается при
// очистке слота перед следующей командой (последняя запись побеждает,
// гарантий после таймаута нет).
func (b *Bridge) Dispatch(functionName string, params map[string]interface{}) protocol.Result {
	if params == nil {
		params = map[string]interface{}{}
	}
	moduleName, _ := params[protocol.KeyModule].(string)
	delete(params, protocol.KeyModule)

	b.slot.Store(nil)
	b.emitter.Emit(events.TopicExecute, events.Event{
		Name:       functionName,
		Parameters: params,
		Module:     moduleName,
	})

	deadline := time.Now().Add(b.timeout)
	for {
		if r := b.slot.Load(); r != nil {
			b.slot.Store(nil)
			return *r
		}
		if time.Now().After(deadline) {
			b.log.Warn("main thread execution timed out", "function", functionName)
			timedOut := protocol.NewResult(false, protocol.ErrTimeout, functionName)
			b.slot.CompareAndSwap(nil, &timedOut)
			continue
		}
		time.Sleep(b.interval)
	}
}

// Complete кладет результат в слот. Вызывается стороной, выполнившей команду,
// ровно один раз и строго последним действием.
func (b *Bridge) Complete(r protocol.Result) {
	b.slot.Store(&r)
}

// Executor — исполняющая половина моста: работает в главном потоке хоста,
// находит функцию в реестре, вызывает ее и кладет результат в слот.
type Executor struct {
	registry *Registry
	bridge   *Bridge
	log      *slog.Logger
}

// NewExecutor создает исполнитель.
func NewExecutor(registry *Registry, bridge *Bridge, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{registry: registry, bridge: bridge, log: log}
}

// Execute выполняет команду и завершает ожидание моста. Последнее действие —
// запись результата в слот.
func (e *Executor) Execute(functionName string, params map[string]interface{}, moduleName string) {
	e.bridge.Complete(e.Run(functionName, params, moduleName))
}

// Run выполняет команду и возвращает результат, не трогая слот. Ошибка
// поиска, ошибка вызова и паника внутри функции превращаются в Result с
// Success=false и описанием; наружу ничего не пробрасывается.
func (e *Executor) Run(functionName string, params map[string]interface{}, moduleName string) protocol.Result {
	fn, found := e.registry.Find(functionName, moduleName)
	value, err := safeCall(fn, params)
	if err != nil {
		desc := protocol.ErrInFunction
		if !found {
			desc = protocol.ErrCallingFunction
		}
		e.log.Error("command failed", "function", functionName, "err", err)
		return protocol.NewResult(false, fmt.Sprintf("%s: %v", desc, err), functionName)
	}
	e.log.Info("executed command", "function", functionName)
	return protocol.NewResult(true, value, functionName)
}

func safeCall(fn Func, params map[string]interface{}) (value interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	if fn.Call == nil {
		return nil, errFunctionNotFound
	}
	return fn.Call(params)
}
