// Package modules собирает фабрики встроенных модулей skyhook.
package modules

import (
	"skyhook/internal/core"
	"skyhook/internal/modules/coremod"
	"skyhook/internal/modules/system"
)

// Builtins возвращает таблицу встроенных модулей по именам. Реестр ищет в
// ней первой при load/hotload.
func Builtins() map[string]core.ModuleFactory {
	return map[string]core.ModuleFactory{
		"core":   coremod.New,
		"system": system.New,
	}
}
