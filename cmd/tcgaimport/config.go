package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nishad/tcgaimport/internal/config"
	"github.com/nishad/tcgaimport/internal/paths"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tcgaimport configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration",
	Long: `Write a default configuration file to the active config path.
If a config file already exists, use --force to overwrite it.`,
	Example: `  tcgaimport config init
  tcgaimport config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show all active paths",
	Args:  cobra.NoArgs,
	RunE:  runConfigPaths,
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing configuration")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathsCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fmt.Fprintf(stdout, "%s %s\n", colorize(colorBold, "Config File:"), configPath)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Fprintln(stdout, colorize(colorYellow, "  (using defaults - no config file found)"))
	}
	fmt.Fprintln(stdout)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}

	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		key, value, ok := strings.Cut(line, ": ")
		switch {
		case strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " "):
			fmt.Fprintln(stdout, colorize(colorBold, line))
		case ok:
			indent := len(key) - len(strings.TrimLeft(key, " "))
			fmt.Fprintf(stdout, "%s%s: %s\n", strings.Repeat(" ", indent),
				colorize(colorCyan, strings.TrimSpace(key)), colorize(colorGreen, value))
		default:
			fmt.Fprintln(stdout, line)
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !configForce {
		printWarning("Configuration already exists at %s", configPath)
		printInfo("Use --force to overwrite")
		return nil
	}

	cfg = config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	printSuccess("Configuration created at %s", configPath)
	return nil
}

func runConfigPaths(cmd *cobra.Command, args []string) error {
	p := paths.GetPaths()

	fmt.Fprintln(stdout, colorize(colorBold, "Base Directories:"))
	fmt.Fprintf(stdout, "  Config:  %s\n", p.ConfigDir)
	fmt.Fprintf(stdout, "  Data:    %s\n", p.DataDir)
	fmt.Fprintf(stdout, "  Cache:   %s\n", p.CacheDir)
	fmt.Fprintf(stdout, "  State:   %s\n", p.StateDir)

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, colorize(colorBold, "Active Paths:"))
	for _, entry := range []struct{ name, path string }{
		{"Mirror", cfg.Mirror.Path},
		{"Work", cfg.WorkDirectory},
		{"Output", cfg.OutputDirectory},
		{"Catalog", cfg.Catalog.Path},
	} {
		status := colorize(colorGray, "✗ not found")
		if _, err := os.Stat(entry.path); err == nil {
			status = colorize(colorGreen, "✓ exists")
		}
		fmt.Fprintf(stdout, "  %-8s %s %s\n", entry.name+":", entry.path, status)
	}
	return nil
}
