// Package config загружает настройки сервера skyhook из YAML.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config описывает основные параметры сервера.
type Config struct {
	Agent struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"agent"`
	Server struct {
		HostProgram           string `yaml:"host_program"`
		Port                  int    `yaml:"port"`
		UseMainThreadExecutor bool   `yaml:"use_main_thread_executor"`
		TimeoutMS             int    `yaml:"timeout_ms"`
		PollIntervalMS        int    `yaml:"poll_interval_ms"`
		ShutdownTimeoutS      int    `yaml:"shutdown_timeout_s"`
	} `yaml:"server"`
	// Modules — встроенные модули, загружаемые при старте. Модуль core
	// загружается всегда и первым.
	Modules []string `yaml:"modules"`
	SQLite  struct {
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"sqlite"`
	Scheduler struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"scheduler"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	var cfg Config
	cfg.Agent.LogLevel = "info"
	cfg.Server.UseMainThreadExecutor = true
	cfg.Server.TimeoutMS = 10000
	cfg.Server.PollIntervalMS = 50
	cfg.Server.ShutdownTimeoutS = 5
	cfg.Modules = []string{"system"}
	cfg.SQLite.RetentionDays = 30
	cfg.Scheduler.IntervalSeconds = 3600
	return cfg
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
