package tournament

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/fixture"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/matchday"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

type materializeInput struct {
	generationID string
	tournamentID int64
	zoneID       int64
	schedule     fixture.Schedule
	categories   []models.Category
	shuffle      bool
	createdAt    time.Time
}

// materialize writes matches, per-category rows, the fresh ledger and the
// generation record for one zone.
func materialize(ctx context.Context, w Writer, in materializeInput) error {
	if err := w.DeleteZoneMatchdays(ctx, in.zoneID); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	legs := []struct {
		leg   fixture.Leg
		pairs []fixture.Pairing
	}{
		{fixture.LegFirst, in.schedule.FirstLeg},
		{fixture.LegSecond, in.schedule.SecondLeg},
	}
	for _, l := range legs {
		for _, p := range l.pairs {
			matchID, err := w.CreateMatch(ctx, models.CreateMatchParams{
				ZoneID:     in.zoneID,
				Round:      p.Round,
				Leg:        string(l.leg),
				HomeClubID: p.HomeTeamID,
				AwayClubID: p.AwayTeamID,
				Status:     models.MatchStatusScheduled,
			})
			if err != nil {
				return fmt.Errorf("create match round %d %d-%d: %w", p.Round, p.HomeTeamID, p.AwayTeamID, err)
			}
			for _, c := range in.categories {
				err := w.CreateMatchCategory(ctx, models.CreateMatchCategoryParams{
					MatchID:          matchID,
					CategoryID:       c.ID,
					KickoffTime:      c.KickoffTime,
					CountsForGeneral: c.CountsForGeneral,
				})
				if err != nil {
					return fmt.Errorf("create match %d category %d: %w", matchID, c.ID, err)
				}
			}
		}
	}

	for _, e := range matchday.Initial(in.schedule.TotalMatchdays()) {
		err := w.CreateMatchday(ctx, models.Matchday{ZoneID: in.zoneID, Round: e.Round, Status: e.Status})
		if err != nil {
			return fmt.Errorf("create matchday %d: %w", e.Round, err)
		}
	}

	gen := models.Generation{
		ID:           in.generationID,
		TournamentID: in.tournamentID,
		ZoneID:       in.zoneID,
		DoubleRound:  in.schedule.DoubleRound,
		Shuffle:      in.shuffle,
		TotalRounds:  in.schedule.TotalMatchdays(),
		CreatedAt:    in.createdAt,
	}
	if in.schedule.Seed != nil {
		gen.Seed = sql.NullInt64{Int64: *in.schedule.Seed, Valid: true}
	}
	if err := w.CreateGeneration(ctx, gen); err != nil {
		return fmt.Errorf("record generation: %w", err)
	}
	return nil
}
