package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/logger"
	"taskManager/internal/repository/postgres"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yml"

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "task-manager",
		Short:         "Task Manager - задачи, комментарии и уведомления",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"путь к YAML-конфигу (по умолчанию config.yml, если он существует)")

	load := func() (*config.Config, error) {
		path := configPath
		if path == "" {
			if _, err := os.Stat(defaultConfigPath); err == nil {
				path = defaultConfigPath
			}
		}
		return config.Load(path)
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(migrateCmd(load))
	rootCmd.AddCommand(sweepCmd(load))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type loader func() (*config.Config, error)

func serveCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API и планировщик напоминаний",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := app.New(cfg)
			defer a.Close()
			if _, err := a.Init(ctx); err != nil {
				return fmt.Errorf("инициализация приложения: %w", err)
			}

			if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("App: Приложение завершилось с ошибкой", err)
				return err
			}
			logger.Info("App: Приложение остановлено")
			return nil
		},
	}
}

func migrateCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Управление схемой PostgreSQL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Применить все миграции",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Development); err != nil {
				return err
			}
			defer logger.Sync()
			return postgres.MigrateUp(cfg.Database.URL)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Откатить последние миграции",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps должен быть положительным, получено %d", steps)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Development); err != nil {
				return err
			}
			defer logger.Sync()
			return postgres.MigrateDown(cfg.Database.URL, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "сколько миграций откатить")
	cmd.AddCommand(down)

	return cmd
}

func sweepCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Один раз разослать напоминания о дедлайнах и выйти",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			a := app.New(cfg)
			defer a.Close()
			if _, err := a.Init(cmd.Context()); err != nil {
				return fmt.Errorf("инициализация приложения: %w", err)
			}

			res, err := a.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d reminded=%d skipped=%d failed=%d\n",
				res.Scanned, res.Reminded, res.Skipped, res.Failed)
			return nil
		},
	}
}
