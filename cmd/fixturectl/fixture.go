package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/config"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/db"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/fixture"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

type scheduleFlags struct {
	singleRound bool
	noShuffle   bool
	seed        int64
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.singleRound, "single-round", false, "Play each pairing once instead of home and away")
	cmd.Flags().BoolVar(&f.noShuffle, "no-shuffle", false, "Keep the given team order")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Shuffle seed; a random one is drawn when omitted")
}

func (f *scheduleFlags) options(cmd *cobra.Command) tournament.Options {
	opts := tournament.Options{DoubleRound: !f.singleRound, Shuffle: !f.noShuffle}
	if cmd.Flags().Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}
	return opts
}

func previewCmd() *cobra.Command {
	var teams string
	flags := &scheduleFlags{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the fixture of a team list without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(teams)
			if err != nil {
				return fmt.Errorf("--teams: %w", err)
			}
			opts := flags.options(cmd)
			schedule, err := fixture.Build(ids, fixture.Options{
				DoubleRound: opts.DoubleRound,
				Shuffle:     opts.Shuffle,
				Seed:        opts.Seed,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"doubleRound":    schedule.DoubleRound,
				"totalMatchdays": schedule.TotalMatchdays(),
				"seed":           schedule.Seed,
				"matchdays":      schedule.Matchdays(),
			})
		},
	}
	cmd.Flags().StringVar(&teams, "teams", "", "Comma separated team ids")
	_ = cmd.MarkFlagRequired("teams")
	flags.register(cmd)
	return cmd
}

func generateCmd(root *rootFlags) *cobra.Command {
	var zoneID, tournamentID int64
	var zones string
	var dryRun bool
	flags := &scheduleFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store the fixture of a zone or tournament",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (zoneID == 0) == (tournamentID == 0) {
				return fmt.Errorf("exactly one of --zone or --tournament is required")
			}
			zoneIDs, err := parseIDs(zones)
			if err != nil {
				return fmt.Errorf("--zones: %w", err)
			}
			opts := flags.options(cmd)

			return withService(cmd.Context(), root, func(ctx context.Context, _ *config.Config, _ *db.DB, svc *tournament.Service) error {
				var res tournament.Result
				switch {
				case zoneID != 0 && dryRun:
					res, err = svc.PreviewZone(ctx, zoneID, opts)
				case zoneID != 0:
					res, err = svc.GenerateZone(ctx, zoneID, opts)
				case dryRun:
					res, err = svc.PreviewTournament(ctx, tournamentID, zoneIDs, opts)
				default:
					res, err = svc.GenerateTournament(ctx, tournamentID, zoneIDs, opts)
				}
				if err != nil {
					return err
				}

				out := make([]map[string]any, 0, len(res.Zones))
				for _, z := range res.Zones {
					out = append(out, map[string]any{
						"zoneId":         z.ZoneID,
						"zoneName":       z.ZoneName,
						"totalMatchdays": z.TotalMatchdays(),
					})
				}
				log.Info().Bool("dry_run", dryRun).Int("zones", len(res.Zones)).Msg("Fixture generation finished")
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"totalMatchdays": res.TotalMatchdays(),
					"seed":           res.Seed,
					"zones":          out,
				})
			})
		},
	}
	cmd.Flags().Int64Var(&zoneID, "zone", 0, "Zone id")
	cmd.Flags().Int64Var(&tournamentID, "tournament", 0, "Tournament id")
	cmd.Flags().StringVar(&zones, "zones", "", "Comma separated zone ids of the tournament (default all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the checks and builder without storing anything")
	flags.register(cmd)
	return cmd
}

func parseIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
