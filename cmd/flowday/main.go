package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowday/flowday/internal/config"
	"github.com/flowday/flowday/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "flowday",
	Short: "Flowday - task board and planning assistant",
	Long:  `Flowday manages your tasks on a kanban board, shows what is due today, and talks to your planning assistant.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr    string
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *log.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "", "Backend API base URL (overrides api.url)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/flowday/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	// Add subcommands
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(stubCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiAddr != "" {
		c.API.URL = apiAddr
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.New(os.Stderr, c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
