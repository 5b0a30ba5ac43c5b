package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/tasklane/internal/cli"
	"github.com/alexanderramin/tasklane/internal/config"
	"github.com/alexanderramin/tasklane/internal/db"
	"github.com/alexanderramin/tasklane/internal/reload"
	"github.com/alexanderramin/tasklane/internal/repository"
	"github.com/alexanderramin/tasklane/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if cfg.LogEnabled {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel}))

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	store := repository.NewSQLiteTaskStore(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Reloads triggered by writes, the day change and other processes all
	// go through one debounced queue.
	refresh := cli.NewRefresher()
	queue := reload.New(refresh.Reload, cfg.ReloadDebounce)
	defer queue.Stop()

	opts := service.Options{
		Location: cfg.Location,
		Reloader: queue,
		Logger:   logger,
	}
	var observers []service.UseCaseObserver
	if cfg.LogEnabled {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	app := &cli.App{
		Tasks:   service.NewTaskService(store, uow, opts, observers...),
		Repeats: service.NewRepeatService(store, uow, opts, observers...),
		Board:   service.NewBoardService(store, uow, opts, observers...),
		Drops:   service.NewDropService(store, uow, opts, observers...),
		Imports: service.NewImportService(store, uow, opts, observers...),
		Store:   store,
		Reloads: queue,
		Refresh: refresh,
		Watch: cli.WatchOptions{
			PollInterval: cfg.PollInterval,
			RolloverAt:   cfg.RolloverAt,
		},
		Location: cfg.Location,
		Logger:   logger,
	}

	// Board redraws clear the screen only on a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
