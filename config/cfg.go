// Package config holds the program configuration: conversion behavior,
// logging and debug reporting. Configuration is plain yaml on top of coded
// defaults; unknown keys are rejected so typos surface immediately.
package config

import (
	"bytes"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

type (
	ConversionConfig struct {
		// OutputNameTemplate names the produced file; see convert
		// package for the available template values.
		OutputNameTemplate    string `yaml:"output_name_template"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
		Overwrite             bool   `yaml:"overwrite"`
		// TargetLanguage is recorded in formats that track the board
		// language when applying translations.
		TargetLanguage string `yaml:"target_language"`
	}

	Config struct {
		Version    int              `yaml:"version"`
		Conversion ConversionConfig `yaml:"conversion"`
		Logging    LoggingConfig    `yaml:"logging"`
		Reporting  ReporterConfig   `yaml:"reporting"`
	}
)

const currentVersion = 1

func defaultConfig() *Config {
	return &Config{
		Version: currentVersion,
		Conversion: ConversionConfig{
			OutputNameTemplate: "{{.Name}}",
		},
		Logging: LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: "normal"},
			FileLogger:    LoggerConfig{Level: "none", Mode: "append"},
		},
		Reporting: ReporterConfig{
			Destination: "aacc-report.zip",
		},
	}
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// only fields we defined, so we cannot use yaml.Unmarshal directly
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration reads configuration from the file at the given path,
// superimposing its values on the coded defaults. An empty path returns the
// defaults unchanged.
func LoadConfiguration(path string) (*Config, error) {
	cfg := defaultConfig()
	if len(path) == 0 {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate configuration file: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Version != currentVersion {
		return fmt.Errorf("unsupported configuration version %d", cfg.Version)
	}
	for _, l := range []LoggerConfig{cfg.Logging.ConsoleLogger, cfg.Logging.FileLogger} {
		switch l.Level {
		case "", "none", "normal", "debug":
		default:
			return fmt.Errorf("unsupported logging level %q", l.Level)
		}
		switch l.Mode {
		case "", "append", "overwrite":
		default:
			return fmt.Errorf("unsupported logging mode %q", l.Mode)
		}
	}
	return nil
}

// Prepare returns the coded default configuration rendered as yaml.
func Prepare() ([]byte, error) {
	return Dump(defaultConfig())
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
