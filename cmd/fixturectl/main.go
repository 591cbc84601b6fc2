// Command fixturectl runs fixture operations without the HTTP server.
//
// Usage:
//
//	fixturectl preview --teams 10,11,12,13 --seed 42
//	fixturectl generate --zone 3 --single-round
//	fixturectl generate --tournament 1 --zones 3,4
//	fixturectl finalize --zone 3 --round 2
//	fixturectl dispatch
//	fixturectl migrate up
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/config"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/db"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "fixturectl",
		Short:        "Zone fixture maintenance CLI",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if flags.verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "config/app.yaml", "Path to the YAML configuration")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(previewCmd())
	root.AddCommand(generateCmd(flags))
	root.AddCommand(finalizeCmd(flags))
	root.AddCommand(dispatchCmd(flags))
	root.AddCommand(migrateCmd(flags))
	return root
}

// withService opens the configured database and runs fn with a service
// bound to it.
func withService(ctx context.Context, flags *rootFlags, fn func(ctx context.Context, cfg *config.Config, database *db.DB, svc *tournament.Service) error) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	svc := tournament.NewService(database.Queries, tournament.Beginner(database.Begin))
	return fn(ctx, cfg, database, svc)
}
