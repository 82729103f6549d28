package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"webpconv/internal/config"
	"webpconv/internal/convert"
	"webpconv/internal/logger"
)

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Проверяет достижимость сервиса конвертации",
		RunE: func(cmd *cobra.Command, args []string) error {
			godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config failed: %w", err)
			}
			logger.SetupDefault(cfg.Logger)

			client := convert.NewClient(&http.Client{Timeout: 10 * time.Second}, cfg.Service.BaseURL)
			if err := client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("%s is down: %w", cfg.Service.BaseURL, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is up\n", cfg.Service.BaseURL)
			return nil
		},
	}
}
