// Package server реализует сервер skyhook: классификацию команд, обработку
// серверных команд и передачу модульных команд через мост в главный поток.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"skyhook/internal/core"
	"skyhook/internal/events"
	"skyhook/pkg/protocol"
)

// Options определяет параметры сервера.
type Options struct {
	// HostProgram задает порт по умолчанию, если Port не указан.
	HostProgram string
	Port        int
	// UseMainThreadExecutor включает мост: модульные команды выполняются в
	// главном потоке хоста. При false функция вызывается прямо в сетевой
	// горутине (допустимо только для хостов, которым это безразлично).
	UseMainThreadExecutor bool
	Timeout               time.Duration
	PollInterval          time.Duration
	ShutdownTimeout       time.Duration
}

// Server держит состояние одного экземпляра: реестр, мост, флаг работы и
// HTTP-листенер. Синглтона нет: в одном процессе может жить несколько
// независимых серверов.
type Server struct {
	registry *core.Registry
	emitter  *events.Emitter
	bridge   *core.Bridge
	executor *core.Executor
	log      *slog.Logger
	opts     Options
	port     int

	running atomic.Bool

	// dispatchMu сериализует обработку команд: слот моста рассчитан на одну
	// команду в полете, поэтому второй запрос ждет, а не ломает рандеву.
	dispatchMu sync.Mutex

	httpMu     sync.Mutex
	httpServer *http.Server
}

// New создает сервер. Порт 0 заменяется портом хост-программы.
func New(registry *core.Registry, emitter *events.Emitter, log *slog.Logger, opts Options) *Server {
	if log == nil {
		log = slog.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	port := opts.Port
	if port == 0 {
		port = protocol.PortFor(opts.HostProgram)
	}
	bridge := core.NewBridge(emitter, opts.Timeout, opts.PollInterval, log)
	s := &Server{
		registry: registry,
		emitter:  emitter,
		bridge:   bridge,
		executor: core.NewExecutor(registry, bridge, log),
		log:      log,
		opts:     opts,
		port:     port,
	}
	s.running.Store(true)
	return s
}

// Executor возвращает исполняющую половину моста для привязки к адаптеру
// главного потока хоста.
func (s *Server) Executor() *core.Executor { return s.executor }

// Port возвращает порт, на котором сервер слушает.
func (s *Server) Port() int { return s.port }

// Running сообщает, принимает ли сервер команды.
func (s *Server) Running() bool { return s.running.Load() }

// HandleCommand классифицирует и выполняет команду. Обработка
// сериализована: одновременные запросы выстраиваются в очередь.
func (s *Server) HandleCommand(cmd protocol.Command, requestID string) protocol.Result {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	params := cmd.Parameters
	if params == nil {
		params = map[string]interface{}{}
	}
	if protocol.IsServerCommand(cmd.FunctionName) {
		return s.handleServerCommand(cmd.FunctionName, params, requestID)
	}
	return s.handleModuleCommand(cmd.FunctionName, params, requestID)
}

func (s *Server) handleServerCommand(name string, params map[string]interface{}, requestID string) protocol.Result {
	// Защитный результат до входа в ветви.
	result := protocol.NewResult(false, protocol.ErrServerCommand, "")

	switch name {
	case protocol.CommandShutdown:
		s.Shutdown()
		result = protocol.NewResult(true, "Server offline", protocol.CommandShutdown)

	case protocol.CommandListFunctions:
		result = protocol.NewResult(true, s.registry.FunctionNames(), protocol.CommandListFunctions)

	case protocol.CommandReloadModules:
		result = protocol.NewResult(true, s.registry.ReloadAll(), protocol.CommandReloadModules)

	case protocol.CommandHotload:
		moduleNames := stringList(params[protocol.KeyModule])
		builtin := true
		if v, ok := params[protocol.KeyIsBuiltin].(bool); ok {
			builtin = v
		}
		// Частичный провал не прерывает пакет: возвращаются только
		// успешно загруженные модули.
		loaded := make([]string, 0, len(moduleNames))
		for _, moduleName := range moduleNames {
			if s.registry.Load(moduleName, builtin) {
				loaded = append(loaded, moduleName)
			}
		}
		result = protocol.NewResult(true, loaded, protocol.CommandHotload)

	case protocol.CommandUnload:
		for _, moduleName := range stringList(params[protocol.KeyModule]) {
			s.registry.Unload(moduleName)
		}
		result = protocol.NewResult(true, s.registry.ModuleNames(), protocol.CommandUnload)

	case protocol.CommandFunctionHelp:
		target, _ := params[protocol.KeyHelpTarget].(string)
		result = s.functionHelp(target)
	}

	s.emitter.Emit(events.TopicCommand, events.Event{
		Name:       name,
		Parameters: map[string]interface{}{},
		Success:    result.Success,
		RequestID:  requestID,
	})
	s.log.Info("executed server command", "command", name)
	return result
}

func (s *Server) functionHelp(target string) protocol.Result {
	fn, found := s.registry.Find(target, "")
	if !found {
		desc := fmt.Sprintf("%s: cannot inspect %q", protocol.ErrCallingFunction, target)
		return protocol.NewResult(false, desc, protocol.CommandFunctionHelp)
	}
	help := map[string]interface{}{
		"function_name": target,
		"arguments":     fn.Args,
	}
	if fn.VarArgs != "" {
		help["packed_args"] = "*" + fn.VarArgs
	}
	if fn.VarKwargs != "" {
		help["packed_kwargs"] = "**" + fn.VarKwargs
	}
	return protocol.NewResult(true, help, protocol.CommandFunctionHelp)
}

func (s *Server) handleModuleCommand(name string, params map[string]interface{}, requestID string) protocol.Result {
	moduleName, _ := params[protocol.KeyModule].(string)

	var result protocol.Result
	if s.opts.UseMainThreadExecutor {
		result = s.bridge.Dispatch(name, params)
	} else {
		delete(params, protocol.KeyModule)
		result = s.executor.Run(name, params, moduleName)
	}
	s.emitter.Emit(events.TopicCommand, events.Event{
		Name:       name,
		Parameters: params,
		Module:     moduleName,
		Success:    result.Success,
		RequestID:  requestID,
	})
	return result
}

// Shutdown переводит флаг работы в false, гасит листенер и публикует событие
// terminated. Безусловно успешен и безопасен при повторных вызовах.
func (s *Server) Shutdown() {
	s.running.Store(false)
	go s.stopHTTP()
	s.emitter.Emit(events.TopicTerminated, events.Event{Payload: "TERMINATED"})
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		names := make([]string, 0, len(list))
		for _, item := range list {
			if name, ok := item.(string); ok {
				names = append(names, name)
			}
		}
		return names
	default:
		return nil
	}
}
