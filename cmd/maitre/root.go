package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/maitre/internal/cli"
	"github.com/aretw0/maitre/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "maitre",
	Short: "maitre is a conversational restaurant booking agent",
	Long: `maitre collects reservation details in plain conversation, asks for an explicit
confirmation, books the table and sends a confirmation SMS.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// bootstrap loads configuration and wires the services shared by every host.
func bootstrap(ctx context.Context, cmd *cobra.Command) (*config.Config, *slog.Logger, *cli.Services, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cli.CreateLogger(cfg.LogLevel, debug)

	svc, err := cli.NewServices(ctx, cfg, logger, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, svc, nil
}
