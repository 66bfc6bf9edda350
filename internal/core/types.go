package core

import "context"

// Статусы выполнения команды.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Коды ошибок, попадающие в Result.ErrorCode.
const (
	CodeUnknownCommand   = "unknown_command"
	CodeAmbiguousCommand = "ambiguous_command"
	CodeBadArguments     = "bad_arguments"
	CodeUnknownFlag      = "unknown_flag"
	CodeBadInput         = "bad_input"
	CodeNotConnected     = "not_connected"
	CodeTransportFailed  = "transport_failed"
	CodeCommandFailed    = "command_failed"
	CodeInternalError    = "internal_error"
	CodeExit             = "exit"
)

// Result описывает унифицированный результат выполнения команды.
// Его одинаково потребляют интерактивный shell, TUI и one-shot CLI.
type Result struct {
	Status    string `json:"status"`
	Output    string `json:"output,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
}

// OK возвращает успешный результат с выводом.
func OK(output string) Result {
	return Result{Status: StatusOK, Output: output}
}

// Fail возвращает результат с ошибкой.
func Fail(code, message string) Result {
	return Result{Status: StatusError, ErrorCode: code, Message: message}
}

// Invocation передает обработчику разобранную команду и состояние сессии.
type Invocation struct {
	Command  *Command
	Args     []string
	Flags    map[string]bool
	Session  *Session
	Registry *Registry
}

// Flag возвращает true, если флаг был указан в строке команды.
func (inv Invocation) Flag(name string) bool {
	return inv.Flags[name]
}

// Handler выполняет команду и возвращает текстовый вывод.
// Ошибки возвращаются, а не печатаются: преобразование в Result
// делает диспетчер.
type Handler func(ctx context.Context, inv Invocation) (string, error)

// Command описывает одну зарегистрированную команду shell.
// Структура неизменяема после регистрации.
type Command struct {
	Name      string
	Aliases   []string
	MinArgs   int
	MaxArgs   int // -1 означает без ограничения сверху
	Flags     []string
	NeedsConn bool
	Summary   string
	Usage     string
	Run       Handler
}

func (c *Command) allowsFlag(name string) bool {
	for _, f := range c.Flags {
		if f == name {
			return true
		}
	}
	return false
}
