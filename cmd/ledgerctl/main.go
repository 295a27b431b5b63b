package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-ReservationCore/internal/config"
	"github.com/m04kA/SMC-ReservationCore/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "ledgerctl - operator tool for the reservation core",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "Path to config.toml")

	rootCmd.AddCommand(slotCmd(&configPath))
	rootCmd.AddCommand(catalogCmd(&configPath))
	rootCmd.AddCommand(bookingsCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env окружение одной команды: конфиг, логгер и соединение с БД
type env struct {
	cfg *config.Config
	log *logger.Logger
	db  *sql.DB
}

func openEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		log.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) wrappedDB() *dbmetrics.DB {
	return dbmetrics.Wrap(e.db, nil)
}

func (e *env) Close() {
	e.db.Close()
	e.log.Close()
}
