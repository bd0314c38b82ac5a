// Package config handles Runlet configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (RUNLET_*)
//  2. Config file (~/.config/runlet/config.yaml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/runlet-dev/runlet/internal/paths"
)

const (
	// DefaultWorkerDir is the default working directory for the worker.
	DefaultWorkerDir = "."
	// DefaultInterpreter is the runtime used to execute the worker script.
	DefaultInterpreter = "python3"
	// DefaultScript is the default worker script name.
	DefaultScript = "worker.py"
	// DefaultLogFile is the worker log path, relative to the working directory.
	DefaultLogFile = "worker.log"
	// DefaultPIDFile is the pidfile path, relative to the working directory.
	DefaultPIDFile = "worker.pid"
	// DefaultStopTimeout is how long 'runlet stop' waits before giving up.
	DefaultStopTimeout = 10 * time.Second
)

// Config holds the Runlet configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	v.SetDefault("worker.dir", DefaultWorkerDir)
	v.SetDefault("worker.interpreter", DefaultInterpreter)
	v.SetDefault("worker.script", DefaultScript)
	v.SetDefault("worker.log_file", DefaultLogFile)
	v.SetDefault("worker.pid_file", DefaultPIDFile)
	v.SetDefault("worker.stop_timeout", DefaultStopTimeout.String())

	if configDir, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("RUNLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a configuration value.
func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// Set sets a configuration value and persists it.
func (c *Config) Set(key string, value interface{}) error {
	c.v.Set(key, value)

	configDir, err := paths.ConfigRoot()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}

// All returns all configuration as a map.
func (c *Config) All() map[string]interface{} {
	return c.v.AllSettings()
}

// WorkerDir returns the worker's working directory.
func (c *Config) WorkerDir() string {
	return c.GetString("worker.dir")
}

// Interpreter returns the interpreter used to run the worker script.
func (c *Config) Interpreter() string {
	return c.GetString("worker.interpreter")
}

// Script returns the worker script path.
func (c *Config) Script() string {
	return c.GetString("worker.script")
}

// LogFile returns the worker log path. Relative paths resolve against
// the worker's working directory.
func (c *Config) LogFile() string {
	return c.GetString("worker.log_file")
}

// PIDFile returns the pidfile path. Relative paths resolve against the
// worker's working directory.
func (c *Config) PIDFile() string {
	return c.GetString("worker.pid_file")
}

// StopTimeout returns how long 'runlet stop' waits for the worker to exit.
func (c *Config) StopTimeout() time.Duration {
	d, err := time.ParseDuration(c.GetString("worker.stop_timeout"))
	if err != nil || d <= 0 {
		return DefaultStopTimeout
	}

	return d
}
