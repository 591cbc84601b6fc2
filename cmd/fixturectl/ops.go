package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/config"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/db"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/events"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/standings"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

func finalizeCmd(root *rootFlags) *cobra.Command {
	var zoneID int64
	var round int
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Close a matchday and unlock the next one when it was fully played",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), root, func(ctx context.Context, _ *config.Config, _ *db.DB, svc *tournament.Service) error {
				res, err := svc.Finalize(ctx, zoneID, round)
				if err != nil {
					return err
				}
				out := map[string]any{
					"zoneId": res.ZoneID,
					"round":  res.Transition.Round,
					"status": res.Transition.To,
				}
				if res.Transition.Unlocked > 0 {
					out["unlockedRound"] = res.Transition.Unlocked
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().Int64Var(&zoneID, "zone", 0, "Zone id")
	cmd.Flags().IntVar(&round, "round", 0, "Matchday number")
	_ = cmd.MarkFlagRequired("zone")
	_ = cmd.MarkFlagRequired("round")
	return cmd
}

func dispatchCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver pending round finished events once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), root, func(ctx context.Context, cfg *config.Config, database *db.DB, _ *tournament.Service) error {
				publishers := events.Multi{standings.NewRecomputer(database)}
				if cfg.AMQP.Enabled() {
					amqpPublisher, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
					if err != nil {
						return fmt.Errorf("connect amqp: %w", err)
					}
					defer amqpPublisher.Close()
					publishers = append(publishers, amqpPublisher)
				}

				dispatcher := events.NewDispatcher(database.Queries, publishers, cfg.Scheduler.DispatchBatch)
				total := 0
				for {
					n, err := dispatcher.DispatchPending(ctx)
					total += n
					if err != nil {
						return err
					}
					if n < cfg.Scheduler.DispatchBatch {
						break
					}
				}
				log.Info().Int("delivered", total).Msg("Outbox drained")
				return nil
			})
		},
	}
}

func migrateCmd(root *rootFlags) *cobra.Command {
	var migrationsDir string
	cmd := &cobra.Command{
		Use:       "migrate up|down|version",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			m, closeFn, err := newMigrate(cfg.Database.Filename, migrationsDir)
			if err != nil {
				return err
			}
			defer closeFn()

			switch args[0] {
			case "up":
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("run migrations: %w", err)
				}
				log.Info().Msg("Migrations applied")
			case "down":
				if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("roll back migrations: %w", err)
				}
				log.Info().Msg("Migrations rolled back")
			case "version":
				version, dirty, err := m.Version()
				if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
					return fmt.Errorf("read version: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"version": version, "dirty": dirty})
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&migrationsDir, "migrations", "", "Read migrations from this directory instead of the embedded set")
	return cmd
}

// newMigrate uses the embedded migrations unless dir is given.
func newMigrate(dbPath, dir string) (*migrate.Migrate, func(), error) {
	if dir == "" {
		sqlDB, err := db.Open(dbPath)
		if err != nil {
			return nil, nil, err
		}
		m, err := db.NewMigrator(sqlDB)
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return m, func() { m.Close() }, nil
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid migrations path: %w", err)
	}
	absDB, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid database path: %w", err)
	}
	m, err := migrate.New("file://"+absDir, "sqlite3://"+absDB)
	if err != nil {
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, func() { m.Close() }, nil
}
