package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/petermazzocco/interior-admin/internal/config"
	"github.com/petermazzocco/interior-admin/internal/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "interior-admin",
		Short:         "Admin API for the interior design catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	load := func() (*config.Config, logger.Logger, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, nil, err
		}
		log := logger.NewLogger(&logger.Config{
			Level:      logger.LogLevel(cfg.Log.Level),
			Output:     os.Stdout,
			JSON:       cfg.Log.JSON,
			TimeFormat: "15:04:05",
		})
		logger.SetDefault(log)
		return cfg, log, nil
	}

	root.AddCommand(serveCmd(load), grantCmd(load))
	return root
}
