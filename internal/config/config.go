package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config описывает основные параметры shell.
type Config struct {
	Shell struct {
		LogLevel string `yaml:"log_level"`
		Prompt   string `yaml:"prompt"`
	} `yaml:"shell"`
	Device struct {
		// Порт по умолчанию для open без аргументов; пустое значение
		// означает автоподбор первого USB-порта.
		Port string `yaml:"port"`
	} `yaml:"device"`
	Tools struct {
		Ampy     string `yaml:"ampy"`
		MpyCross string `yaml:"mpy_cross"`
		Esptool  string `yaml:"esptool"`
	} `yaml:"tools"`
	Source struct {
		// Локальная директория с исходниками для sync и запасной
		// путь поиска файлов для put.
		Dir string `yaml:"dir"`
	} `yaml:"source"`
	History struct {
		Path  string `yaml:"path"`
		Limit int    `yaml:"limit"`
	} `yaml:"history"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	var cfg Config
	cfg.Shell.LogLevel = "info"
	cfg.Shell.Prompt = "mpsh"
	cfg.Tools.Ampy = "ampy"
	cfg.Tools.MpyCross = "mpy-cross"
	cfg.Tools.Esptool = "esptool.py"
	cfg.History.Path = defaultHistoryPath()
	cfg.History.Limit = 50
	return cfg
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mpsh_history.db"
	}
	return filepath.Join(home, ".mpsh", "history.db")
}

// Load читает конфиг из файла YAML, поверх значений по умолчанию.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- путь к конфигу задается доверенным оператором.
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("config file is empty")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
