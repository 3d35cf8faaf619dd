package main

import (
	"context"
	"fmt"
	"jotter/internal/config"
	"jotter/internal/database"
	"jotter/internal/database/repositories"
	"jotter/internal/notes"
	"jotter/internal/server"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the notes API",
	Long: `api serves GET and POST /notes, persisting every note to a single
JSON document (a flat file by default, or a postgres row).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, &loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		if cfg.Debug {
			log.SetLevel(log.LevelDebug)
		} else {
			log.SetLevel(log.LevelInfo)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var flagValues struct {
	host         string
	port         int
	debug        bool
	allowOrigins string
	backend      string
	file         string
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flagValues.host, "host", "0.0.0.0", "interface to listen on")
	f.IntVar(&flagValues.port, "port", 5001, "port to listen on")
	f.BoolVar(&flagValues.debug, "debug", true, "print routes, mount pprof and expose error details")
	f.StringVar(&flagValues.allowOrigins, "allow-origins", "*", "comma separated CORS origins")
	f.StringVar(&flagValues.backend, "backend", config.BackendFile, "notes backend: file or postgres")
	f.StringVar(&flagValues.file, "file", "notes.json", "notes file for the file backend")
}

// applyFlags overrides environment settings with flags given explicitly.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		c.Host = flagValues.host
	}
	if flags.Changed("port") {
		c.Port = flagValues.port
	}
	if flags.Changed("debug") {
		c.Debug = flagValues.debug
	}
	if flags.Changed("allow-origins") {
		c.AllowOrigins = flagValues.allowOrigins
	}
	if flags.Changed("backend") {
		c.Backend = flagValues.backend
	}
	if flags.Changed("file") {
		c.NotesFile = flagValues.file
	}
}

// openStore returns the repository for the configured backend. db is nil for
// the file backend.
func openStore(c config.Config) (repositories.NoteRepository, database.Service, error) {
	if c.Backend != config.BackendPostgres {
		return repositories.NewFileNoteRepository(c.NotesFile), nil, nil
	}
	db, err := database.New(c.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repositories.NewPostgresNoteRepository(db.DB(), c.Database.Document), db, nil
}

func serve(ctx context.Context) error {
	repo, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	srv := server.New(cfg, notes.NewBook(repo), db)
	srv.RegisterFiberRoutes()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.Infof("listening on %s (backend=%s, debug=%t)", cfg.Addr(), cfg.Backend, cfg.Debug)
		errs <- srv.Listen(cfg.Addr())
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown with error: %v", err)
	}
	log.Info("server exiting")
	return nil
}
