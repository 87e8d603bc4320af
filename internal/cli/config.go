// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() map[string]any {
	return map[string]any{
		"url":              "",
		"output-path":      ".",
		"common-directory": false,
		"attempts":         3,
		"timeout":          "30s",
		"token":            "",
	}
}

// applyConfigDefaults merges config file values and environment variables into
// the root options. Precedence: flag > environment > config file > default.
func applyConfigDefaults(cmd *cobra.Command, ro *RootOpts) error {
	path := ro.Config
	if path == "" {
		home, _ := os.UserHomeDir()
		jsonPath := filepath.Join(home, ".config", "cosmicweb.json")
		yamlPath := filepath.Join(home, ".config", "cosmicweb.yaml")
		ymlPath := filepath.Join(home, ".config", "cosmicweb.yml")

		if _, err := os.Stat(jsonPath); err == nil {
			path = jsonPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			path = yamlPath
		} else if _, err := os.Stat(ymlPath); err == nil {
			path = ymlPath
		}
	}

	cfg := map[string]any{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return fmt.Errorf("invalid YAML config file: %w", err)
			}
		default:
			if err := json.Unmarshal(b, &cfg); err != nil {
				return fmt.Errorf("invalid JSON config file: %w", err)
			}
		}
	}

	flags := cmd.Flags()
	setStr := func(name string, env string, set func(string)) {
		if flags.Changed(name) {
			return
		}
		if env != "" {
			if v := strings.TrimSpace(os.Getenv(env)); v != "" {
				set(v)
				return
			}
		}
		if v, ok := cfg[name]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				set(s)
			}
		}
	}
	setInt := func(name string, set func(int)) {
		if flags.Changed(name) {
			return
		}
		if v, ok := cfg[name]; ok && v != nil {
			var x int
			if _, err := fmt.Sscan(fmt.Sprint(v), &x); err == nil {
				set(x)
			}
		}
	}
	setBool := func(name string, set func(bool)) {
		if flags.Changed(name) {
			return
		}
		if v, ok := cfg[name]; ok && v != nil {
			s := fmt.Sprint(v)
			set(s == "true" || s == "1")
		}
	}

	setStr("url", "COSMICWEB_URL", func(v string) { ro.URL = v })
	setStr("output-path", "", func(v string) { ro.OutputPath = v })
	setBool("common-directory", func(v bool) { ro.CommonDirectory = v })
	setInt("attempts", func(v int) { ro.Attempts = v })
	setStr("timeout", "", func(v string) { ro.Timeout = v })
	setStr("token", "COSMICWEB_TOKEN", func(v string) { ro.Token = v })

	return nil
}

func configPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cosmicweb.json")
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		useYAML bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Long: `Creates a default configuration file at ~/.config/cosmicweb.json (or .yaml)

The configuration file sets default values for the global flags.
CLI flags and environment variables always override config file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("could not find home directory: %w", err)
			}

			configDir := filepath.Join(home, ".config")
			ext := ".json"
			if useYAML {
				ext = ".yaml"
			}
			path := filepath.Join(configDir, "cosmicweb"+ext)

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
			}
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				return fmt.Errorf("could not create config directory: %w", err)
			}

			cfg := DefaultConfig()
			var data []byte
			if useYAML {
				data, err = yaml.Marshal(cfg)
			} else {
				data, err = json.MarshalIndent(cfg, "", "  ")
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("could not write config file: %w", err)
			}

			fmt.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config file")
	cmd.Flags().BoolVar(&useYAML, "yaml", false, "Create YAML config instead of JSON")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if _, err := os.Stat(path); err != nil {
				fmt.Println("No config file found.")
				fmt.Printf("Run 'cosmicweb config init' to create one at:\n  %s\n", path)
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("Config file: %s\n\n", path)
			fmt.Println(string(data))
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(configPath())
		},
	}
}
