package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runlet-dev/runlet/internal/config"
	clierrors "github.com/runlet-dev/runlet/internal/errors"
	"github.com/runlet-dev/runlet/internal/output"
)

// settableKeys are the configuration keys 'config set' accepts.
var settableKeys = []string{
	"worker.dir",
	"worker.interpreter",
	"worker.script",
	"worker.log_file",
	"worker.pid_file",
	"worker.stop_timeout",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Runlet configuration",
		Long: `View and change Runlet's configuration.

Values come from (highest priority first): RUNLET_* environment
variables, the config file, and built-in defaults. 'config set' writes
to the config file; environment variables still override it.`,
		Example: `  runlet config list
  runlet config get worker.script
  runlet config set worker.dir /srv/app`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "Show all configuration values",
		Example: `  runlet config list`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			if out.JSON {
				return out.PrintJSON(cfg.All())
			}

			flat := flattenSettings("", cfg.All())

			keys := make([]string, 0, len(flat))
			for k := range flat {
				keys = append(keys, k)
			}

			sort.Strings(keys)

			for _, k := range keys {
				out.Print("%s = %v\n", k, flat[k])
			}

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Show a single configuration value",
		Example: `  runlet config get worker.interpreter`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			key := args[0]

			value := cfg.Get(key)
			if value == nil {
				return &clierrors.CLIError{
					Message: fmt.Sprintf("Unknown configuration key: %s", key),
					Hint:    "Run 'runlet config list' to see available keys",
					Code:    clierrors.ExitUsage,
				}
			}

			if out.JSON {
				return out.PrintJSON(map[string]interface{}{key: value})
			}

			out.Print("%v\n", value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  runlet config set worker.script worker.py
  runlet config set worker.stop_timeout 30s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			key, value := args[0], args[1]

			if !isSettableKey(key) {
				return &clierrors.CLIError{
					Message: fmt.Sprintf("Unknown configuration key: %s", key),
					Hint:    "Settable keys: " + strings.Join(settableKeys, ", "),
					Code:    clierrors.ExitUsage,
				}
			}

			if err := cfg.Set(key, value); err != nil {
				return clierrors.ConfigFailed("save configuration", err)
			}

			out.Success("%s = %s", key, value)

			return nil
		},
	}
}

func isSettableKey(key string) bool {
	for _, k := range settableKeys {
		if k == key {
			return true
		}
	}

	return false
}

// flattenSettings turns Viper's nested settings map into dotted keys.
func flattenSettings(prefix string, settings map[string]interface{}) map[string]interface{} {
	flat := make(map[string]interface{})

	for key, value := range settings {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}

		if nested, ok := value.(map[string]interface{}); ok {
			for k, v := range flattenSettings(full, nested) {
				flat[k] = v
			}

			continue
		}

		flat[full] = value
	}

	return flat
}
