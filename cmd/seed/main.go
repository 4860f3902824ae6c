// seed provisions the hostel database: it creates the schema, optionally
// wipes every table, and loads a generated roster when none exists.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/pflag"

	"hostel/internal/config"
	"hostel/internal/hostel"
	"hostel/internal/roster"
	"hostel/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	var (
		reset bool
		count int
		seed  int64
	)
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "database driver (sqlite or postgres)")
	flagSet.StringVar(&cfg.DatabaseURL, "database", cfg.DatabaseURL, "SQLite path or Postgres connection string")
	flagSet.BoolVar(&reset, "reset", false, "delete all students, attendance, complaints and feedback first")
	flagSet.IntVarP(&count, "count", "n", roster.DefaultSize, "number of students to generate")
	flagSet.Int64Var(&seed, "seed", 0, "random seed (0 uses the current time)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	repo := hostel.NewRepository(db.Client)
	if reset {
		if err := repo.Reset(ctx); err != nil {
			return err
		}
		log.Info("cleared all tables")
	}

	existing, err := repo.CountStudents(ctx)
	if err != nil {
		return fmt.Errorf("count students: %w", err)
	}
	if existing > 0 {
		log.Info("roster already present, nothing to do", "students", existing)
		return nil
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	students, err := roster.Generate(count, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	if err := repo.InsertStudents(ctx, students); err != nil {
		return err
	}
	log.Info("inserted roster", "students", len(students), "seed", seed)
	return nil
}
