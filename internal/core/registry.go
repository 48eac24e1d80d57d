package core

import (
	"fmt"
	"log/slog"
	"sync"
)

type registryEntry struct {
	name    string
	builtin bool
	factory ModuleFactory
	module  Module
}

// Registry хранит загруженные модули в порядке загрузки. Уникальность имен
// функций между модулями не гарантируется: при поиске побеждает первое
// совпадение, поэтому порядок загрузки значим и сохраняется.
type Registry struct {
	mu       sync.Mutex
	builtins map[string]ModuleFactory
	external map[string]ModuleFactory
	entries  []*registryEntry
	log      *slog.Logger
}

// NewRegistry создает пустой реестр с таблицей встроенных модулей.
func NewRegistry(builtins map[string]ModuleFactory, log *slog.Logger) *Registry {
	if builtins == nil {
		builtins = map[string]ModuleFactory{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		builtins: builtins,
		external: map[string]ModuleFactory{},
		log:      log,
	}
}

// RegisterExternal добавляет фабрику внешнего модуля, доступного для Load.
func (r *Registry) RegisterExternal(name string, factory ModuleFactory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("external module: %w", errInvalidArguments)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.external[name] = factory
	return nil
}

// Load загружает модуль по имени и сообщает, удалось ли это. Ошибок не
// возвращает. При builtin=true фабрика ищется сначала среди встроенных
// модулей, затем среди внешних; при builtin=false — только среди внешних.
func (r *Registry) Load(name string, builtin bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	factory, ok := r.resolveFactory(name, builtin)
	if !ok {
		r.log.Warn("failed to load module", "module", name)
		return false
	}
	for _, e := range r.entries {
		if e.name == name {
			return true
		}
	}
	mod, err := factory()
	if err != nil {
		r.log.Warn("failed to load module", "module", name, "err", err)
		return false
	}
	r.entries = append(r.entries, &registryEntry{name: name, builtin: builtin, factory: factory, module: mod})
	r.log.Info("loaded module", "module", name)
	return true
}

func (r *Registry) resolveFactory(name string, builtin bool) (ModuleFactory, bool) {
	if builtin {
		if f, ok := r.builtins[name]; ok {
			return f, true
		}
	}
	f, ok := r.external[name]
	return f, ok
}

// Unload убирает модуль по точному имени; отсутствие модуля не ошибка.
func (r *Registry) Unload(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			r.log.Info("unloaded module", "module", name)
			return
		}
	}
}

// ReloadAll заново выполняет фабрику каждого загруженного модуля и возвращает
// имена обновленных. Best-effort, не атомарно: модуль, чья фабрика вернула
// ошибку, пропускается и остается в прежнем состоянии.
func (r *Registry) ReloadAll() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	reloaded := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		mod, err := e.factory()
		if err != nil {
			r.log.Warn("failed to reload module", "module", e.name, "err", err)
			continue
		}
		e.module = mod
		reloaded = append(reloaded, e.name)
	}
	return reloaded
}

// Find ищет функцию в указанном модуле либо во всех модулях в порядке
// загрузки. Если функция не найдена, возвращается (sentinel, false): вызов
// sentinel вернет ошибку поиска, а не панику — ошибка откладывается до
// момента вызова.
func (r *Registry) Find(functionName, moduleName string) (Func, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if moduleName != "" && e.name != moduleName {
			continue
		}
		for _, fn := range e.module.Functions() {
			if fn.Name == functionName {
				return fn, true
			}
		}
	}
	return notFoundFunc(functionName, moduleName), false
}

func notFoundFunc(functionName, moduleName string) Func {
	return Func{
		Name: functionName,
		Call: func(map[string]interface{}) (interface{}, error) {
			if moduleName != "" {
				return nil, fmt.Errorf("%q in module %q: %w", functionName, moduleName, errFunctionNotFound)
			}
			return nil, fmt.Errorf("%q: %w", functionName, errFunctionNotFound)
		},
	}
}

// ModuleNames возвращает имена загруженных модулей в порядке загрузки.
func (r *Registry) ModuleNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	return names
}

// FunctionNames возвращает имена всех функций всех модулей в порядке загрузки.
func (r *Registry) FunctionNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.entries {
		for _, fn := range e.module.Functions() {
			names = append(names, fn.Name)
		}
	}
	return names
}
