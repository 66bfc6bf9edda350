// Package cli собирает cobra-поверхность: интерактивный shell по
// умолчанию, TUI и one-shot выполнение команд.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mpsh/internal/app"
	"mpsh/internal/config"
	"mpsh/internal/core"
	"mpsh/internal/transports/shell"
	"mpsh/internal/transports/tui"
	"mpsh/pkg/logger"
)

// New создает корневую CLI-команду.
func New(version string) *cobra.Command {
	var cfgPath string
	var openTarget string

	root := &cobra.Command{
		Use:           "mpsh",
		Short:         "Shell for MicroPython boards",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, cfgPath, openTarget, version)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config")
	root.PersistentFlags().StringVar(&openTarget, "open", "", "open the board on start")

	root.AddCommand(newShellCmd(&cfgPath, &openTarget, version))
	root.AddCommand(newTUICmd(&cfgPath, &openTarget, version))
	root.AddCommand(newExecCmd(&cfgPath, &openTarget, version))
	root.AddCommand(newVersionCmd(version))

	return root
}

func buildApp(cfgPath, version string) (*app.App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg, logger.New(cfg.Shell.LogLevel), version)
}

// openLine переводит значение флага --open в команду open.
func openLine(target string) string {
	if target == "" {
		return ""
	}
	return "open " + target
}

func runShell(cmd *cobra.Command, cfgPath, openTarget, version string) error {
	a, err := buildApp(cfgPath, version)
	if err != nil {
		return err
	}
	defer a.Close()

	if line := openLine(openTarget); line != "" {
		res := a.Dispatcher.Dispatch(cmd.Context(), line)
		shell.Render(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
	}
	sh := shell.New(a.Dispatcher, a.Config.Shell.Prompt, version)
	return sh.Run(cmd.Context())
}

func newShellCmd(cfgPath, openTarget *string, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run the interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, *cfgPath, *openTarget, version)
		},
	}
}

func newTUICmd(cfgPath, openTarget *string, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the graphical front-end",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgPath, version)
			if err != nil {
				return err
			}
			defer a.Close()
			return tui.Run(a.Dispatcher, version, openLine(*openTarget))
		},
	}
}

func newExecCmd(cfgPath, openTarget *string, version string) *cobra.Command {
	var script string
	var commands []string
	cmd := &cobra.Command{
		Use:   "exec -c \"<command>[; <command>...]\"",
		Short: "Execute commands and exit",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := collectLines(append(commands, args...), script)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return fmt.Errorf("nothing to execute: pass -c or --script")
			}
			a, err := buildApp(*cfgPath, version)
			if err != nil {
				return err
			}
			defer a.Close()

			if line := openLine(*openTarget); line != "" {
				lines = append([]string{line}, lines...)
			}

			failed := false
			for _, line := range lines {
				res := a.Dispatcher.Dispatch(cmd.Context(), line)
				shell.Render(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
				if res.Status == core.StatusError {
					failed = true
					break
				}
				if res.ErrorCode == core.CodeExit {
					break
				}
			}
			if failed {
				return fmt.Errorf("command failed")
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&commands, "command", "c", nil, "commands to execute, separated by ';'")
	cmd.Flags().StringVar(&script, "script", "", "execute commands from file")
	return cmd
}

// collectLines превращает аргументы -c (команды через ";") и файл
// скрипта в последовательность строк; пустые строки и комментарии
// пропускаются.
func collectLines(args []string, script string) ([]string, error) {
	var lines []string
	for _, chunk := range strings.Split(strings.Join(args, " "), ";") {
		if line := strings.TrimSpace(chunk); line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	if script != "" {
		data, err := os.ReadFile(script) // #nosec G304 -- путь к скрипту задает пользователь.
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		for _, raw := range strings.Split(string(data), "\n") {
			if line := strings.TrimSpace(raw); line != "" && !strings.HasPrefix(line, "#") {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version)
		},
	}
}
