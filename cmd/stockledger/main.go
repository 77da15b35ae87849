// Command stockledger runs the equipment stock ledger service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/erazemk/stockledger/internal/api"
	"github.com/erazemk/stockledger/internal/db"
	"github.com/erazemk/stockledger/internal/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Value:   "stockledger.sqlite3",
		Usage:   "SQLite database path or postgres:// URL",
		Sources: cli.EnvVars("STOCKLEDGER_DB"),
	}
}

func logFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log",
		Aliases: []string{"l"},
		Usage:   "also append logs to this file",
		Sources: cli.EnvVars("STOCKLEDGER_LOG"),
	}
}

func adminFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Value:   "admin",
		Usage:   "admin username created on first run",
		Sources: cli.EnvVars("STOCKLEDGER_ADMIN_USER"),
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	closeLog := func() {}
	return &cli.Command{
		Name:      "stockledger",
		Usage:     "multi-site equipment stock ledger",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     []cli.Flag{logFlag()},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger, cleanup, err := newLogger(stdout, stderr, cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			slog.SetDefault(logger)
			closeLog = cleanup
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			closeLog()
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(stdout),
			initCommand(stdout),
			seedCommand(stdout),
		},
		DefaultCommand: "serve",
	}
}

func serveCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			dbFlag(),
			adminFlag(),
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Value:   ":8080",
				Usage:   "listen address",
				Sources: cli.EnvVars("STOCKLEDGER_ADDR"),
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Usage:   "token signing secret (default: generated and kept in the database)",
				Sources: cli.EnvVars("STOCKLEDGER_JWT_SECRET"),
			},
			&cli.StringSliceFlag{
				Name:    "cors-origin",
				Usage:   "allowed browser origin, repeatable",
				Sources: cli.EnvVars("STOCKLEDGER_CORS_ORIGIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serve(ctx, stdout, serveConfig{
				dsn:         cmd.String("db"),
				addr:        cmd.String("addr"),
				adminUser:   cmd.String("user"),
				jwtSecret:   cmd.String("jwt-secret"),
				corsOrigins: cmd.StringSlice("cors-origin"),
			})
		},
	}
}

func initCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create the schema and the first admin account",
		Flags: []cli.Flag{dbFlag(), adminFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, closeDB, err := openStore(cmd.String("db"))
			if err != nil {
				return err
			}
			defer closeDB()

			cred, err := bootstrapAdmin(ctx, st, cmd.String("user"))
			if err != nil {
				return err
			}
			if cred == nil {
				return errors.New("database already has users")
			}
			printCredentials(stdout, "Admin account created:", []credential{*cred})
			return nil
		},
	}
}

func seedCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "create demo sites, equipment types and staff accounts",
		Flags: []cli.Flag{dbFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, closeDB, err := openStore(cmd.String("db"))
			if err != nil {
				return err
			}
			defer closeDB()

			creds, err := seedDemoData(ctx, st)
			if err != nil {
				return err
			}
			slog.Info("demo data ready", "new_users", len(creds))
			if len(creds) > 0 {
				printCredentials(stdout, "Demo accounts created:", creds)
			}
			return nil
		},
	}
}

// openStore opens the database, ensures the schema and returns a store with
// a function that closes the underlying handle.
func openStore(dsn string) (*store.Store, func(), error) {
	database, err := db.Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("ensuring schema: %w", err)
	}
	slog.Info("database ready", "dialect", database.Dialect)
	return store.New(database), func() { database.Close() }, nil
}

type serveConfig struct {
	dsn         string
	addr        string
	adminUser   string
	jwtSecret   string
	corsOrigins []string
}

func serve(ctx context.Context, stdout io.Writer, cfg serveConfig) error {
	st, closeDB, err := openStore(cfg.dsn)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("closing database")
		closeDB()
	}()

	// First run: create an admin so someone can log in.
	cred, err := bootstrapAdmin(ctx, st, cfg.adminUser)
	if err != nil {
		return err
	}
	if cred != nil {
		printCredentials(stdout, "Admin account created:", []credential{*cred})
	}

	secret := cfg.jwtSecret
	if secret == "" {
		if secret, err = st.GetJWTSecret(ctx); err != nil {
			return fmt.Errorf("loading jwt secret: %w", err)
		}
	}

	server := &http.Server{
		Addr: cfg.addr,
		Handler: api.NewRouter(api.Config{
			Store:       st,
			JWTSecret:   secret,
			CORSOrigins: cfg.corsOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.addr, err)
	}
	return serveHTTP(ctx, server, ln)
}

// serveHTTP serves on ln until ctx is done, then drains in-flight requests.
// It returns only after Shutdown has finished.
func serveHTTP(ctx context.Context, server *http.Server, ln net.Listener) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		drained <- server.Shutdown(shutdownCtx)
	}()

	slog.Info("server started", "addr", ln.Addr().String())
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	if err := <-drained; err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return fmt.Errorf("shutting down: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// printCredentials prints generated passwords. They are shown only once.
func printCredentials(w io.Writer, title string, creds []credential) {
	fmt.Fprintln(w, title)
	for _, c := range creds {
		fmt.Fprintf(w, "  Username: %s\n", c.Username)
		fmt.Fprintf(w, "  Password: %s\n", c.Password)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save these passwords, they cannot be recovered.")
	fmt.Fprintln(w, "Users can change them after logging in.")
}
