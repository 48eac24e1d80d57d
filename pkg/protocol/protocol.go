// Package protocol описывает проводной контракт skyhook: формат команд и
// результатов, зарезервированные серверные команды и порты хост-программ.
package protocol

import "time"

// Ключи JSON-полей и служебных параметров.
const (
	KeyFunctionName = "FunctionName"
	KeyParameters   = "Parameters"

	// KeyModule указывает модуль, в котором искать функцию. Это метаданные:
	// перед вызовом функции ключ удаляется из параметров.
	KeyModule = "_Module"

	// KeyIsBuiltin различает встроенные модули skyhook и внешние при hotload.
	KeyIsBuiltin = "is_skyhook_module"

	// KeyHelpTarget задает имя функции для SKY_FUNCTION_HELP.
	KeyHelpTarget = "function_name"
)

// Command — входящая команда: имя функции и ее именованные параметры.
type Command struct {
	FunctionName string                 `json:"FunctionName"`
	Parameters   map[string]interface{} `json:"Parameters"`
}

// Result — унифицированный ответ сервера. Формируется ровно один раз на команду.
type Result struct {
	Time        string      `json:"Time"`
	Success     bool        `json:"Success"`
	ReturnValue interface{} `json:"ReturnValue"`
	Command     string      `json:"Command"`
}

// NewResult собирает Result с текущим временем в формате HH:MM:SS.
func NewResult(success bool, returnValue interface{}, command string) Result {
	return Result{
		Time:        time.Now().Format("15:04:05"),
		Success:     success,
		ReturnValue: returnValue,
		Command:     command,
	}
}

// Серверные команды: фиксированный закрытый набор, обрабатывается самим
// сервером, а не модулями.
const (
	CommandShutdown      = "SKY_SHUTDOWN"
	CommandListFunctions = "SKY_LS"
	CommandReloadModules = "SKY_RELOAD_MODULES"
	CommandHotload       = "SKY_HOTLOAD"
	CommandUnload        = "SKY_UNLOAD"
	CommandFunctionHelp  = "SKY_FUNCTION_HELP"
)

var serverCommands = map[string]struct{}{
	CommandShutdown:      {},
	CommandListFunctions: {},
	CommandReloadModules: {},
	CommandHotload:       {},
	CommandUnload:        {},
	CommandFunctionHelp:  {},
}

// IsServerCommand проверяет имя по точному совпадению с набором серверных
// команд. Сравнение регистрозависимое: похожие имена остаются модульными.
func IsServerCommand(name string) bool {
	_, ok := serverCommands[name]
	return ok
}

// Описания ошибок, попадающие в ReturnValue при Success=false.
const (
	ErrCallingFunction = "An error occurred when calling the function"
	ErrInFunction      = "An error occurred when executing the function"
	ErrServerCommand   = "An error occurred processing this server command"
	ErrServerReload    = "An error occurred with reloading a module on the server"
	ErrTimeout         = "The command timed out"
)

// Имена хост-программ.
const (
	HostBlender          = "blender"
	HostMaya             = "maya"
	HostHoudini          = "houdini"
	HostSubstancePainter = "substance_painter"
	HostUnreal           = "unreal"
)

// Порты по умолчанию для хост-программ.
const (
	PortUndefined        = 65500
	PortMaya             = 65501
	PortHoudini          = 65502
	PortBlender          = 65504
	PortSubstancePainter = 65505
	PortUnreal           = 30010
)

var hostPorts = map[string]int{
	HostBlender:          PortBlender,
	HostMaya:             PortMaya,
	HostHoudini:          PortHoudini,
	HostSubstancePainter: PortSubstancePainter,
	HostUnreal:           PortUnreal,
}

// PortFor возвращает порт хост-программы, PortUndefined для неизвестной.
func PortFor(hostProgram string) int {
	if port, ok := hostPorts[hostProgram]; ok {
		return port
	}
	return PortUndefined
}
