// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/vidgate/internal/config"
)

var errNoConfigFile = errors.New("--config is required")

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(configPath), newConfigDumpCmd(configPath))
	return cmd
}

func newConfigValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a YAML configuration file (with env overrides applied)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := strings.TrimSpace(*configPath)
			if path == "" {
				return errNoConfigFile
			}
			if _, err := config.NewLoader(path).Load(); err != nil {
				return fmt.Errorf("configuration error in %s:\n  %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", path)
			return nil
		},
	}
}

func newConfigDumpCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration (defaults + file + env) as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(strings.TrimSpace(*configPath)).Load()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
