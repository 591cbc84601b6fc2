package standings

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/db"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/events"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

// Recomputer rebuilds a zone's stored table whenever one of its rounds
// finishes.
type Recomputer struct {
	database *db.DB
}

func NewRecomputer(database *db.DB) *Recomputer {
	return &Recomputer{database: database}
}

// Publish implements events.Publisher.
func (r *Recomputer) Publish(ctx context.Context, ev events.RoundFinished) error {
	return r.Recompute(ctx, ev.ZoneID)
}

// Recompute replaces the stored table of zoneID in one transaction.
func (r *Recomputer) Recompute(ctx context.Context, zoneID int64) error {
	err := r.database.RunInTx(ctx, func(txdb *db.DB) error {
		clubs, err := txdb.Queries.ListZoneClubs(ctx, zoneID)
		if err != nil {
			return fmt.Errorf("list clubs: %w", err)
		}
		results, err := txdb.Queries.ListZoneResults(ctx, zoneID)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		table, err := Calculate(zoneID, clubs, results)
		if err != nil {
			return err
		}
		if err := txdb.Queries.DeleteZoneStandings(ctx, zoneID); err != nil {
			return fmt.Errorf("clear standings: %w", err)
		}
		for _, s := range table {
			if err := txdb.Queries.CreateStanding(ctx, s); err != nil {
				return fmt.Errorf("store standing of club %d: %w", s.ClubID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("recompute standings of zone %d: %w", zoneID, err)
	}
	log.Ctx(ctx).Info().Int64("zone_id", zoneID).Msg("Standings recomputed")
	return nil
}

// List returns the stored table of zoneID.
func (r *Recomputer) List(ctx context.Context, zoneID int64) ([]models.Standing, error) {
	return r.database.Queries.ListStandings(ctx, zoneID)
}
