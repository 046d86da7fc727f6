package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/telegram-navigator/internal/config"
)

var envToJSONCmd = &cobra.Command{
	Use:   "env-to-json <path>",
	Short: "Export ENABLE_ENV-gated a@b=value variables as nested JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		written, err := exportSettings(args[0], config.Environ())
		if err != nil {
			return err
		}
		if !written {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s is not set, nothing written\n", config.EnableEnvKey)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "settings written to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envToJSONCmd)
}

// exportSettings writes the nested settings to path. The file is left untouched when
// the export is disabled.
func exportSettings(path string, environ map[string]string) (bool, error) {
	_, enabled, err := config.NestedSettings(environ)
	if err != nil || !enabled {
		return false, err
	}
	f, err := os.Create(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if _, err := config.WriteSettingsJSON(f, environ); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
