package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/fixture"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

// target is the tournament and zones a generation request resolved to.
type target struct {
	tournament models.Tournament
	zones      []models.Zone
}

// zonePlan is a zone that passed the gate together with its teams.
type zonePlan struct {
	zone  models.Zone
	teams []int64
}

// resolveZone loads a single zone and its tournament.
func resolveZone(ctx context.Context, r Reader, zoneID int64) (target, error) {
	zone, err := r.GetZone(ctx, zoneID)
	if err != nil {
		return target{}, notFound(err, "zone", zoneID)
	}
	t, err := r.GetTournament(ctx, zone.TournamentID)
	if err != nil {
		return target{}, notFound(err, "tournament", zone.TournamentID)
	}
	return target{tournament: t, zones: []models.Zone{zone}}, nil
}

// resolveTournament loads every zone of the tournament, or only zoneIDs when
// given. Requested zones must belong to the tournament.
func resolveTournament(ctx context.Context, r Reader, tournamentID int64, zoneIDs []int64) (target, error) {
	t, err := r.GetTournament(ctx, tournamentID)
	if err != nil {
		return target{}, notFound(err, "tournament", tournamentID)
	}

	var zones []models.Zone
	if len(zoneIDs) == 0 {
		zones, err = r.ListZonesByTournament(ctx, tournamentID)
		if err != nil {
			return target{}, fmt.Errorf("list zones: %w", err)
		}
	} else {
		ids := slices.Clone(zoneIDs)
		slices.Sort(ids)
		for _, id := range slices.Compact(ids) {
			zone, err := r.GetZone(ctx, id)
			if err != nil {
				return target{}, notFound(err, "zone", id)
			}
			if zone.TournamentID != tournamentID {
				return target{}, &ValidationError{
					ZoneID: id,
					Reason: fmt.Sprintf("does not belong to tournament %d", tournamentID),
				}
			}
			zones = append(zones, zone)
		}
	}

	if len(zones) == 0 {
		return target{}, &ValidationError{Reason: fmt.Sprintf("tournament %d has no zones", tournamentID)}
	}
	return target{tournament: t, zones: zones}, nil
}

// checkGate runs the generation preconditions in order and stops at the
// first failing one: no existing fixture, enough teams, complete categories,
// then zone and tournament state.
func checkGate(ctx context.Context, r Reader, tg target) ([]zonePlan, []models.Category, error) {
	var existing []int64
	for _, zone := range tg.zones {
		n, err := r.CountZoneMatches(ctx, zone.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("count matches of zone %d: %w", zone.ID, err)
		}
		if n > 0 {
			existing = append(existing, zone.ID)
		}
	}
	if len(existing) > 0 {
		return nil, nil, &AlreadyExistsError{ZoneIDs: existing}
	}

	plans := make([]zonePlan, 0, len(tg.zones))
	for _, zone := range tg.zones {
		ids, err := r.ListZoneClubIDs(ctx, zone.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("list clubs of zone %d: %w", zone.ID, err)
		}
		teams := fixture.UniqueTeams(ids)
		if len(teams) < 2 {
			return nil, nil, &ValidationError{
				ZoneID: zone.ID,
				Reason: fmt.Sprintf("zone %q needs at least two clubs, has %d", zone.Name, len(teams)),
				Err:    fixture.ErrTooFewTeams,
			}
		}
		plans = append(plans, zonePlan{zone: zone, teams: teams})
	}

	categories, err := r.ListEnabledCategories(ctx, tg.tournament.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, nil, &ValidationError{
			Reason: fmt.Sprintf("tournament %q has no enabled categories", tg.tournament.Name),
		}
	}
	for _, c := range categories {
		if strings.TrimSpace(c.KickoffTime) == "" {
			return nil, nil, &ValidationError{
				CategoryID: c.ID,
				Reason:     fmt.Sprintf("category %q has no kickoff time", c.Name),
			}
		}
	}

	if tg.tournament.FixtureLocked {
		return nil, nil, &ValidationError{
			Reason: fmt.Sprintf("tournament %q fixture is locked", tg.tournament.Name),
		}
	}
	for _, zone := range tg.zones {
		if zone.Status != models.ZoneStatusOpen {
			return nil, nil, &ValidationError{
				ZoneID: zone.ID,
				Reason: fmt.Sprintf("zone %q is %s, fixture can only be generated for open zones", zone.Name, zone.Status),
			}
		}
	}

	return plans, categories, nil
}

func notFound(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("load %s %d: %w", entity, id, err)
}
