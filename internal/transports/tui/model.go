// Package tui реализует графический front-end поверх Bubble Tea:
// панель вывода, строка ввода и кнопки быстрых действий. Кнопка — это
// фиксированная строка команды, которая уходит в тот же диспетчер,
// что и ввод в интерактивном shell.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mpsh/internal/core"
)

// quickAction связывает кнопку с командой shell.
type quickAction struct {
	label   string
	command string
}

// QuickActions — кнопки в порядке отображения.
var QuickActions = []quickAction{
	{label: "open", command: "open"},
	{label: "ls", command: "ls"},
	{label: "pwd", command: "pwd"},
	{label: "ports", command: "ports"},
	{label: "sysinfo", command: "sysinfo"},
	{label: "reset", command: "reset"},
	{label: "close", command: "close"},
}

type focusArea int

const (
	focusInput focusArea = iota
	focusButtons
)

type resultMsg struct {
	line string
	res  core.Result
}

type autoRunMsg struct {
	line string
}

// Model хранит состояние TUI.
type Model struct {
	disp     *core.Dispatcher
	version  string
	initial  string
	input    textinput.Model
	view     viewport.Model
	lines    []string
	busy     bool
	focus    focusArea
	selected int
	width    int
	height   int
	ready    bool
}

// Run запускает TUI. Непустой initial выполняется первой командой
// сразу после старта.
func Run(disp *core.Dispatcher, version, initial string) error {
	program := tea.NewProgram(NewModel(disp, version, initial), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// NewModel создает модель TUI.
func NewModel(disp *core.Dispatcher, version, initial string) Model {
	input := textinput.New()
	input.Placeholder = "command"
	input.Prompt = "> "
	input.Focus()

	return Model{
		disp:    disp,
		version: version,
		initial: initial,
		input:   input,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.initial != "" {
		line := m.initial
		cmds = append(cmds, func() tea.Msg { return autoRunMsg{line: line} })
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case autoRunMsg:
		return m.submit(msg.line)

	case resultMsg:
		m.busy = false
		m.appendResult(msg.line, msg.res)
		if msg.res.ErrorCode == core.CodeExit {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyTab:
			if m.focus == focusInput {
				m.focus = focusButtons
				m.input.Blur()
			} else {
				m.focus = focusInput
				m.input.Focus()
			}
			return m, nil
		}
		// Пока команда выполняется, ввод выключен: диспетчер строго
		// последовательный, вторая команда не должна уйти параллельно.
		if m.busy {
			return m, nil
		}
		if m.focus == focusButtons {
			return m.updateButtons(msg)
		}
		if msg.Type == tea.KeyEnter {
			line := m.input.Value()
			m.input.SetValue("")
			return m.submit(line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateButtons(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		if m.selected > 0 {
			m.selected--
		}
	case "right", "l":
		if m.selected < len(QuickActions)-1 {
			m.selected++
		}
	case "enter", " ":
		return m.submit(QuickActions[m.selected].command)
	}
	return m, nil
}

// submit отправляет строку в диспетчер из tea.Cmd, чтобы блокирующий
// вызов внешнего инструмента не замораживал отрисовку.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(line) == "" {
		return m, nil
	}
	m.busy = true
	m.appendLine(styleEcho.Render(m.promptString() + line))
	disp := m.disp
	return m, func() tea.Msg {
		return resultMsg{line: line, res: disp.Dispatch(context.Background(), line)}
	}
}

func (m *Model) promptString() string {
	return fmt.Sprintf("mpsh [%s]> ", m.disp.Session().Cwd())
}

func (m *Model) appendResult(line string, res core.Result) {
	if res.Output != "" {
		m.appendLine(res.Output)
	}
	if res.Status == core.StatusError {
		m.appendLine(styleError.Render("error: " + res.Message))
	}
}

func (m *Model) appendLine(s string) {
	m.lines = append(m.lines, strings.Split(s, "\n")...)
	if m.ready {
		m.view.SetContent(strings.Join(m.lines, "\n"))
		m.view.GotoBottom()
	}
}

func (m *Model) resize() {
	// Заголовок, статус, кнопки и ввод занимают фиксированные строки;
	// остальное отдается панели вывода.
	viewHeight := m.height - 7
	if viewHeight < 3 {
		viewHeight = 3
	}
	if !m.ready {
		m.view = viewport.New(m.width-4, viewHeight)
		m.ready = true
	} else {
		m.view.Width = m.width - 4
		m.view.Height = viewHeight
	}
	m.view.SetContent(strings.Join(m.lines, "\n"))
	m.view.GotoBottom()
	m.input.Width = m.width - 8
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	title := styleTitle.Render("mpsh " + m.version)

	status := "not connected"
	if sess := m.disp.Session(); sess.Connected() {
		status = "connected to " + sess.Conn().Target()
	}
	if m.busy {
		status += "  (running...)"
	}

	var buttons []string
	for i, action := range QuickActions {
		style := styleButton
		if m.focus == focusButtons && i == m.selected {
			style = styleButtonActive
		}
		buttons = append(buttons, style.Render(action.label))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		stylePane.Width(m.width-2).Render(m.view.View()),
		styleStatus.Render(status),
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...),
		m.input.View(),
	)
}
