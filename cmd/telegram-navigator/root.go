package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/telegram-navigator/internal/lang"
)

var rootCmd = &cobra.Command{
	Use:   "telegram-navigator",
	Short: "Telegram bot that renders status-keyed localized menus",
	Long: `telegram-navigator shows every user a screen identified by a category@state status.
Texts come from per-language trees and buttons from a shared action tree.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openCatalog loads trees from dir, or the bundled sample trees when dir is empty.
func openCatalog(dir string) (*lang.Catalog, error) {
	if dir == "" {
		return lang.LoadCatalog(lang.Bundled())
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir %s is not a directory", dir)
	}
	return lang.LoadCatalog(os.DirFS(dir))
}

// requireLanguage fails when catalog has no text tree for code.
func requireLanguage(catalog *lang.Catalog, code string) error {
	if _, err := catalog.TextTree(code); err != nil {
		return fmt.Errorf("default language %q (loaded: %v): %w", code, catalog.Languages(), err)
	}
	return nil
}
