package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	errCommandExists  = errors.New("command already registered")
	errUnknownCommand = errors.New("unknown command")
	errInvalidCommand = errors.New("invalid command definition")
)

// AmbiguityError возвращается, когда префикс совпадает с несколькими
// командами сразу.
type AmbiguityError struct {
	Token      string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous command %q: matches %s", e.Token, strings.Join(e.Candidates, ", "))
}

// Registry хранит зарегистрированные команды shell.
// Наполняется один раз при старте процесса и далее не меняется.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry создает пустой реестр команд.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Register добавляет команду; имя и алиасы должны быть уникальны.
func (r *Registry) Register(cmd *Command) error {
	if cmd == nil || cmd.Run == nil {
		return fmt.Errorf("command or handler is nil: %w", errInvalidCommand)
	}
	if cmd.Name == "" {
		return fmt.Errorf("command name is empty: %w", errInvalidCommand)
	}
	if cmd.MaxArgs >= 0 && cmd.MaxArgs < cmd.MinArgs {
		return fmt.Errorf("%s: max args below min args: %w", cmd.Name, errInvalidCommand)
	}
	if r.taken(cmd.Name) {
		return fmt.Errorf("%s: %w", cmd.Name, errCommandExists)
	}
	for _, alias := range cmd.Aliases {
		if alias == "" {
			return fmt.Errorf("%s: empty alias: %w", cmd.Name, errInvalidCommand)
		}
		if r.taken(alias) {
			return fmt.Errorf("%s (alias of %s): %w", alias, cmd.Name, errCommandExists)
		}
	}
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd.Name
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.commands[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Lookup находит команду по токену: точное имя, затем алиас, затем
// однозначный case-insensitive префикс по именам и алиасам.
// Несколько кандидатов по префиксу дают AmbiguityError.
func (r *Registry) Lookup(token string) (*Command, error) {
	if cmd, ok := r.commands[token]; ok {
		return cmd, nil
	}
	if name, ok := r.aliases[token]; ok {
		return r.commands[name], nil
	}

	lower := strings.ToLower(token)
	if lower != token {
		if cmd, ok := r.commands[lower]; ok {
			return cmd, nil
		}
		if name, ok := r.aliases[lower]; ok {
			return r.commands[name], nil
		}
	}

	matched := make(map[string]struct{})
	for name := range r.commands {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			matched[name] = struct{}{}
		}
	}
	for alias, name := range r.aliases {
		if strings.HasPrefix(strings.ToLower(alias), lower) {
			matched[name] = struct{}{}
		}
	}

	switch len(matched) {
	case 0:
		return nil, fmt.Errorf("%s: %w", token, errUnknownCommand)
	case 1:
		for name := range matched {
			return r.commands[name], nil
		}
	}

	candidates := make([]string, 0, len(matched))
	for name := range matched {
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)
	return nil, &AmbiguityError{Token: token, Candidates: candidates}
}

// Names возвращает отсортированный список имен команд.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Commands возвращает команды в порядке имен.
func (r *Registry) Commands() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, name := range r.Names() {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}
