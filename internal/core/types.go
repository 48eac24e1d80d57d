package core

import "errors"

var (
	errInvalidArguments = errors.New("invalid arguments")
	errFunctionNotFound = errors.New("function not found in any loaded module")
)

// Func описывает вызываемую функцию модуля. Имена аргументов и маркеры
// вариативных параметров объявляются явно: реестр не занимается рефлексией.
type Func struct {
	Name string
	// Args перечисляет имена именованных аргументов для SKY_FUNCTION_HELP.
	Args []string
	// VarArgs и VarKwargs — имена *args/**kwargs, пустая строка если их нет.
	VarArgs   string
	VarKwargs string
	Call      func(params map[string]interface{}) (interface{}, error)
}

// Module — именованное пространство функций, загружаемое в реестр.
type Module interface {
	Name() string
	Functions() []Func
}

// ModuleFactory создает свежий экземпляр модуля; вызывается при load и reload.
type ModuleFactory func() (Module, error)
