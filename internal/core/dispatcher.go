package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mpsh/internal/device"
)

// ErrExit возвращается обработчиком команды exit; диспетчер
// превращает ее в успешный Result с кодом CodeExit, по которому
// front-end завершает свой цикл.
var ErrExit = errors.New("exit requested")

// Recorder получает каждую выполненную строку вместе с результатом.
// Используется для персистентной истории команд.
type Recorder interface {
	Record(ctx context.Context, line string, res Result)
}

// Dispatcher превращает строку текста в вызов команды. Одна и та же
// dispatch-логика обслуживает интерактивный shell, TUI и one-shot CLI:
// front-end только читает строки и показывает Result.
type Dispatcher struct {
	reg  *Registry
	sess *Session
	log  *slog.Logger
	rec  Recorder
}

// NewDispatcher создает диспетчер над реестром и сессией.
// Recorder может быть nil.
func NewDispatcher(reg *Registry, sess *Session, log *slog.Logger, rec Recorder) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{reg: reg, sess: sess, log: log, rec: rec}
}

// Session возвращает сессию диспетчера.
func (d *Dispatcher) Session() *Session {
	return d.sess
}

// Registry возвращает реестр команд.
func (d *Dispatcher) Registry() *Registry {
	return d.reg
}

// Dispatch выполняет одну строку. Любой сбой обработчика или
// транспорта превращается в Result со статусом error; наружу ошибки
// не распространяются и процесс не падает.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) Result {
	res := d.dispatch(ctx, line)
	if d.rec != nil && strings.TrimSpace(line) != "" {
		d.rec.Record(ctx, line, res)
	}
	if res.Status == StatusError {
		d.log.Debug("command failed", "line", line, "code", res.ErrorCode, "msg", res.Message)
	}
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, line string) Result {
	tokens, err := Tokenize(line)
	if err != nil {
		return Fail(CodeBadInput, err.Error())
	}
	if len(tokens) == 0 {
		return OK("")
	}

	cmd, err := d.reg.Lookup(tokens[0])
	if err != nil {
		var amb *AmbiguityError
		if errors.As(err, &amb) {
			return Fail(CodeAmbiguousCommand,
				fmt.Sprintf("ambiguous command: %s matches %s", amb.Token, strings.Join(amb.Candidates, ", ")))
		}
		msg := fmt.Sprintf("unknown command: %s", tokens[0])
		if hints := d.reg.Suggest(tokens[0]); len(hints) > 0 {
			msg += fmt.Sprintf("; did you mean: %s", strings.Join(hints, ", "))
		}
		return Fail(CodeUnknownCommand, msg)
	}

	args, flags, ferr := splitArgs(cmd, tokens[1:])
	if ferr != nil {
		return Fail(CodeUnknownFlag, fmt.Sprintf("%v\nusage: %s", ferr, cmd.Usage))
	}
	if len(args) < cmd.MinArgs {
		return Fail(CodeBadArguments, fmt.Sprintf("missing arguments\nusage: %s", cmd.Usage))
	}
	if cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs {
		return Fail(CodeBadArguments, fmt.Sprintf("too many arguments\nusage: %s", cmd.Usage))
	}
	if cmd.NeedsConn && !d.sess.Connected() {
		return Fail(CodeNotConnected, "not connected: use 'open' first")
	}

	return d.invoke(ctx, cmd, args, flags)
}

// invoke вызывает обработчик; паника внутри обработчика не должна
// ронять shell и становится Result с кодом internal_error.
func (d *Dispatcher) invoke(ctx context.Context, cmd *Command, args []string, flags map[string]bool) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panic", "command", cmd.Name, "panic", r)
			res = Fail(CodeInternalError, fmt.Sprintf("internal error in %s: %v", cmd.Name, r))
		}
	}()

	inv := Invocation{
		Command:  cmd,
		Args:     args,
		Flags:    flags,
		Session:  d.sess,
		Registry: d.reg,
	}
	out, err := cmd.Run(ctx, inv)
	if err == nil {
		return OK(out)
	}

	var tool *device.ToolError
	switch {
	case errors.Is(err, ErrExit):
		return Result{Status: StatusOK, Output: out, ErrorCode: CodeExit}
	case errors.Is(err, device.ErrNotConnected):
		res = Fail(CodeNotConnected, "not connected: use 'open' first")
	case errors.As(err, &tool):
		res = Fail(CodeTransportFailed, err.Error())
		if out == "" {
			out = tool.Output
		}
	default:
		res = Fail(CodeCommandFailed, err.Error())
	}
	// Частичный вывод, накопленный до сбоя, сохраняется в результате.
	res.Output = out
	return res
}

// splitArgs отделяет флаги от позиционных аргументов и сверяет их
// с объявлением команды.
func splitArgs(cmd *Command, tokens []string) ([]string, map[string]bool, error) {
	args := make([]string, 0, len(tokens))
	flags := make(map[string]bool)
	for _, tok := range tokens {
		if len(tok) > 1 && strings.HasPrefix(tok, "-") {
			if !cmd.allowsFlag(tok) {
				return nil, nil, fmt.Errorf("unknown flag %s for %s", tok, cmd.Name)
			}
			flags[tok] = true
			continue
		}
		args = append(args, tok)
	}
	return args, flags, nil
}
