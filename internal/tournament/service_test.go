package tournament_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/db"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/matchday"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/testutil"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(database *db.DB) *tournament.Service {
	return tournament.NewService(
		database.Queries,
		tournament.Beginner(database.Begin),
		tournament.WithClock(func() time.Time { return fixedNow }),
	)
}

func seedPtr(v int64) *int64 { return &v }

func count(t *testing.T, database *db.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(query, args...).Scan(&n))
	return n
}

func TestGenerateZoneMaterializesFixture(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 4)
	svc := newService(database)
	ctx := context.Background()

	res, err := svc.GenerateZone(ctx, seed.ZoneID, tournament.Options{DoubleRound: true, Shuffle: true, Seed: seedPtr(42)})
	require.NoError(t, err)
	require.Len(t, res.Zones, 1)
	assert.Equal(t, 6, res.TotalMatchdays())
	require.NotNil(t, res.Seed)
	assert.Equal(t, int64(42), *res.Seed)

	assert.Equal(t, 12, count(t, database, `SELECT COUNT(*) FROM matches WHERE zone_id = ?`, seed.ZoneID))
	assert.Equal(t, 24, count(t, database, `SELECT COUNT(*) FROM match_categories mc JOIN matches m ON m.id = mc.match_id WHERE m.zone_id = ?`, seed.ZoneID))
	assert.Equal(t, 6, count(t, database, `SELECT COUNT(*) FROM matches WHERE zone_id = ? AND leg = 'SECOND' AND round > 3`, seed.ZoneID))
	assert.Equal(t, 12, count(t, database, `SELECT COUNT(*) FROM match_categories mc JOIN matches m ON m.id = mc.match_id WHERE m.zone_id = ? AND mc.counts_for_general = 0 AND mc.kickoff_time = '11:00'`, seed.ZoneID))

	days, err := svc.ListMatchdays(ctx, seed.ZoneID)
	require.NoError(t, err)
	require.Len(t, days, 6)
	for _, d := range days {
		want := matchday.StatusPending
		if d.Round == 1 {
			want = matchday.StatusInProgress
		}
		assert.Equal(t, want, d.Status, "round %d", d.Round)
	}

	gens, err := svc.ListGenerations(ctx, seed.ZoneID)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.True(t, gens[0].Seed.Valid)
	assert.Equal(t, int64(42), gens[0].Seed.Int64)
	assert.Equal(t, 6, gens[0].TotalRounds)
	assert.True(t, gens[0].CreatedAt.Equal(fixedNow))
}

func TestGenerateZoneRejectsExistingFixture(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 4)
	svc := newService(database)
	ctx := context.Background()

	_, err := svc.GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
	require.NoError(t, err)

	_, err = svc.GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
	require.ErrorIs(t, err, tournament.ErrFixtureExists)
	var exists *tournament.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, []int64{seed.ZoneID}, exists.ZoneIDs)

	assert.Equal(t, 12, count(t, database, `SELECT COUNT(*) FROM matches WHERE zone_id = ?`, seed.ZoneID))
	assert.Equal(t, 1, count(t, database, `SELECT COUNT(*) FROM fixture_generations WHERE zone_id = ?`, seed.ZoneID))
}

func TestConcurrentGenerateCreatesOneFixture(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 6)
	svc := newService(database)

	const callers = 5
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.GenerateZone(context.Background(), seed.ZoneID, tournament.DefaultOptions())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, tournament.ErrFixtureExists)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 30, count(t, database, `SELECT COUNT(*) FROM matches WHERE zone_id = ?`, seed.ZoneID))
}

func TestPreviewWritesNothingAndReproduces(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 5)
	svc := newService(database)
	ctx := context.Background()

	preview, err := svc.PreviewZone(ctx, seed.ZoneID, tournament.DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, preview.Seed, "shuffle without seed must report the generated one")
	assert.Equal(t, 10, preview.TotalMatchdays())
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM matches`))
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM matchdays`))

	replay, err := svc.PreviewZone(ctx, seed.ZoneID, tournament.Options{DoubleRound: true, Shuffle: true, Seed: preview.Seed})
	require.NoError(t, err)
	assert.Equal(t, preview.Zones[0].Schedule, replay.Zones[0].Schedule)

	generated, err := svc.GenerateZone(ctx, seed.ZoneID, tournament.Options{DoubleRound: true, Shuffle: true, Seed: preview.Seed})
	require.NoError(t, err)
	assert.Equal(t, preview.Zones[0].Schedule, generated.Zones[0].Schedule)
}

func TestPreviewWithoutShuffleHasNoSeed(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 4)
	svc := newService(database)

	res, err := svc.PreviewZone(context.Background(), seed.ZoneID, tournament.Options{DoubleRound: false})
	require.NoError(t, err)
	assert.Nil(t, res.Seed)
	assert.Equal(t, 3, res.TotalMatchdays())

	// Assignment order is kept: the first club plays the last one in round 1.
	first := res.Zones[0].Schedule.FirstLeg[0]
	assert.Equal(t, 1, first.Round)
	assert.Equal(t, seed.ClubIDs[0], first.HomeTeamID)
	assert.Equal(t, seed.ClubIDs[3], first.AwayTeamID)
}

func TestGateChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("missing zone", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		_, err := newService(database).GenerateZone(ctx, 999, tournament.DefaultOptions())
		require.ErrorIs(t, err, tournament.ErrNotFound)
	})

	t.Run("too few clubs", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		seed := testutil.SeedZone(t, database, 1)
		_, err := newService(database).GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
		require.ErrorIs(t, err, tournament.ErrValidation)
		var verr *tournament.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, seed.ZoneID, verr.ZoneID)
	})

	t.Run("existing fixture wins over team count", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		seed := testutil.SeedZone(t, database, 2)
		_, err := newService(database).GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
		require.NoError(t, err)
		testutil.Exec(t, database, `DELETE FROM zone_clubs WHERE zone_id = ? AND club_id = ?`, seed.ZoneID, seed.ClubIDs[1])

		_, err = newService(database).GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
		require.ErrorIs(t, err, tournament.ErrFixtureExists)
	})

	t.Run("category without kickoff", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		seed := testutil.SeedZone(t, database, 4)
		testutil.Exec(t, database, `UPDATE categories SET kickoff_time = '' WHERE id = ?`, seed.CategoryIDs[1])
		_, err := newService(database).GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
		var verr *tournament.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, seed.CategoryIDs[1], verr.CategoryID)
	})

	t.Run("disabled category is ignored", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		seed := testutil.SeedZone(t, database, 4)
		testutil.Exec(t, database, `UPDATE categories SET kickoff_time = '', enabled = 0 WHERE id = ?`, seed.CategoryIDs[1])
		_, err := newService(database).GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 12, count(t, database, `SELECT COUNT(*) FROM match_categories`))
	})

	t.Run("no enabled categories", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		seed := testutil.SeedZone(t, database, 4)
		testutil.Exec(t, database, `UPDATE categories SET enabled = 0`)
		_, err := newService(database).GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
		require.ErrorIs(t, err, tournament.ErrValidation)
	})

	t.Run("zone not open", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		seed := testutil.SeedZone(t, database, 4)
		testutil.Exec(t, database, `UPDATE zones SET status = 'locked' WHERE id = ?`, seed.ZoneID)
		_, err := newService(database).GenerateZone(ctx, seed.ZoneID, tournament.DefaultOptions())
		require.ErrorIs(t, err, tournament.ErrValidation)
	})

	t.Run("tournament fixture locked", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		seed := testutil.SeedZone(t, database, 4)
		testutil.Exec(t, database, `UPDATE tournaments SET fixture_locked = 1 WHERE id = ?`, seed.TournamentID)
		_, err := newService(database).PreviewZone(ctx, seed.ZoneID, tournament.DefaultOptions())
		require.ErrorIs(t, err, tournament.ErrValidation)
	})
}

// failingUnitOfWork fails every ledger insert after the first few.
type failingUnitOfWork struct {
	tournament.UnitOfWork
	allowed int
}

func (f *failingUnitOfWork) CreateMatchday(ctx context.Context, arg models.Matchday) error {
	if f.allowed == 0 {
		return errors.New("disk I/O error")
	}
	f.allowed--
	return f.UnitOfWork.CreateMatchday(ctx, arg)
}

func TestGenerateRollsBackOnStorageFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 4)
	begin := func(ctx context.Context) (tournament.UnitOfWork, error) {
		tx, err := database.Begin(ctx)
		if err != nil {
			return nil, err
		}
		return &failingUnitOfWork{UnitOfWork: tx, allowed: 2}, nil
	}
	svc := tournament.NewService(database.Queries, begin)

	_, err := svc.GenerateZone(context.Background(), seed.ZoneID, tournament.DefaultOptions())
	require.ErrorIs(t, err, tournament.ErrGenerationFailed)
	assert.NotContains(t, err.Error(), "disk")

	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM matches`))
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM match_categories`))
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM matchdays`))
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM fixture_generations`))

	// The failed attempt leaves the zone free for a clean retry.
	_, err = newService(database).GenerateZone(context.Background(), seed.ZoneID, tournament.DefaultOptions())
	require.NoError(t, err)
}

func TestGenerateTournamentSharesSeedAcrossZones(t *testing.T) {
	database := testutil.NewTestDB(t)
	tournamentID, _ := testutil.SeedTournament(t, database, "Clausura")
	zoneA, _ := testutil.SeedZoneIn(t, database, tournamentID, "Zona A", 4)
	zoneB, _ := testutil.SeedZoneIn(t, database, tournamentID, "Zona B", 5)
	svc := newService(database)

	res, err := svc.GenerateTournament(context.Background(), tournamentID, nil, tournament.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Zones, 2)
	require.NotNil(t, res.Seed)
	for _, z := range res.Zones {
		require.NotNil(t, z.Schedule.Seed)
		assert.Equal(t, *res.Seed, *z.Schedule.Seed)
	}
	assert.Equal(t, 6, res.Zones[0].TotalMatchdays())
	assert.Equal(t, 10, res.Zones[1].TotalMatchdays())
	assert.Equal(t, 10, res.TotalMatchdays())

	assert.Equal(t, 12, count(t, database, `SELECT COUNT(*) FROM matches WHERE zone_id = ?`, zoneA))
	assert.Equal(t, 20, count(t, database, `SELECT COUNT(*) FROM matches WHERE zone_id = ?`, zoneB))
}

func TestGenerateTournamentIsAllOrNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	tournamentID, _ := testutil.SeedTournament(t, database, "Clausura")
	_, _ = testutil.SeedZoneIn(t, database, tournamentID, "Zona A", 4)
	_, _ = testutil.SeedZoneIn(t, database, tournamentID, "Zona B", 1)

	_, err := newService(database).GenerateTournament(context.Background(), tournamentID, nil, tournament.DefaultOptions())
	require.ErrorIs(t, err, tournament.ErrValidation)
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM matches`))
}

func TestGenerateTournamentSubset(t *testing.T) {
	database := testutil.NewTestDB(t)
	tournamentID, _ := testutil.SeedTournament(t, database, "Clausura")
	zoneA, _ := testutil.SeedZoneIn(t, database, tournamentID, "Zona A", 4)
	zoneB, _ := testutil.SeedZoneIn(t, database, tournamentID, "Zona B", 1)
	otherID, _ := testutil.SeedTournament(t, database, "Otro")
	foreign, _ := testutil.SeedZoneIn(t, database, otherID, "Zona X", 4)
	svc := newService(database)
	ctx := context.Background()

	_, err := svc.GenerateTournament(ctx, tournamentID, []int64{zoneA, foreign}, tournament.DefaultOptions())
	require.ErrorIs(t, err, tournament.ErrValidation)

	res, err := svc.GenerateTournament(ctx, tournamentID, []int64{zoneA}, tournament.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Zones, 1)
	assert.Equal(t, zoneA, res.Zones[0].ZoneID)
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM matches WHERE zone_id = ?`, zoneB))
}

// finishMatches records a 1-0 result in every category of the listed matches.
func finishMatches(t *testing.T, svc *tournament.Service, database *db.DB, matches []models.Match, categoryIDs []int64) {
	t.Helper()
	for _, m := range matches {
		scores := make([]models.CategoryScore, 0, len(categoryIDs))
		for _, id := range categoryIDs {
			scores = append(scores, models.CategoryScore{CategoryID: id, HomeScore: 1, AwayScore: 0})
		}
		_, err := svc.RecordResult(context.Background(), m.ID, scores)
		require.NoError(t, err)
	}
}

func roundMatches(t *testing.T, database *db.DB, zoneID int64, round int) []models.Match {
	t.Helper()
	all, err := database.Queries.ListZoneMatches(context.Background(), zoneID)
	require.NoError(t, err)
	var out []models.Match
	for _, m := range all {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

func ledger(t *testing.T, svc *tournament.Service, zoneID int64) []matchday.Status {
	t.Helper()
	days, err := svc.ListMatchdays(context.Background(), zoneID)
	require.NoError(t, err)
	out := make([]matchday.Status, len(days))
	for i, d := range days {
		out[i] = d.Status
	}
	return out
}

func TestFinalizeProgression(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 4)
	svc := newService(database)
	ctx := context.Background()

	_, err := svc.GenerateZone(ctx, seed.ZoneID, tournament.Options{DoubleRound: false})
	require.NoError(t, err)

	finishMatches(t, svc, database, roundMatches(t, database, seed.ZoneID, 1), seed.CategoryIDs)
	res, err := svc.Finalize(ctx, seed.ZoneID, 1)
	require.NoError(t, err)
	assert.Equal(t, matchday.StatusPlayed, res.Transition.To)
	assert.Equal(t, 2, res.Transition.Unlocked)
	assert.Equal(t, []matchday.Status{matchday.StatusPlayed, matchday.StatusInProgress, matchday.StatusPending}, ledger(t, svc, seed.ZoneID))
	assert.Equal(t, 1, count(t, database, `SELECT COUNT(*) FROM round_events WHERE zone_id = ? AND round = 1`, seed.ZoneID))

	// Only one of round 2's matches is played.
	round2 := roundMatches(t, database, seed.ZoneID, 2)
	require.Len(t, round2, 2)
	finishMatches(t, svc, database, round2[:1], seed.CategoryIDs)
	res, err = svc.Finalize(ctx, seed.ZoneID, 2)
	require.NoError(t, err)
	assert.Equal(t, matchday.StatusIncomplete, res.Transition.To)
	assert.Zero(t, res.Transition.Unlocked)
	assert.Equal(t, []matchday.Status{matchday.StatusPlayed, matchday.StatusIncomplete, matchday.StatusPending}, ledger(t, svc, seed.ZoneID))

	_, err = svc.Finalize(ctx, seed.ZoneID, 3)
	require.ErrorIs(t, err, tournament.ErrValidation)
	require.ErrorIs(t, err, matchday.ErrRoundLocked)

	// Finishing the rest lets the round be finalized again.
	finishMatches(t, svc, database, round2[1:], seed.CategoryIDs)
	res, err = svc.Finalize(ctx, seed.ZoneID, 2)
	require.NoError(t, err)
	assert.Equal(t, matchday.StatusPlayed, res.Transition.To)
	assert.Equal(t, 3, res.Transition.Unlocked)

	// Re-finalizing a played round does not queue a second event.
	_, err = svc.Finalize(ctx, seed.ZoneID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, database, `SELECT COUNT(*) FROM round_events WHERE zone_id = ? AND round = 1`, seed.ZoneID))
	assert.Equal(t, 2, count(t, database, `SELECT COUNT(*) FROM round_events WHERE zone_id = ?`, seed.ZoneID))
}

func TestFinalizeNotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 4)
	svc := newService(database)
	ctx := context.Background()

	_, err := svc.Finalize(ctx, 999, 1)
	require.ErrorIs(t, err, tournament.ErrNotFound)

	_, err = svc.Finalize(ctx, seed.ZoneID, 1)
	require.ErrorIs(t, err, tournament.ErrNotFound, "no ledger before generation")

	_, err = svc.Finalize(ctx, seed.ZoneID, 0)
	require.ErrorIs(t, err, tournament.ErrValidation)
}

func TestRecordResultValidation(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 4)
	svc := newService(database)
	ctx := context.Background()

	_, err := svc.GenerateZone(ctx, seed.ZoneID, tournament.Options{DoubleRound: false})
	require.NoError(t, err)
	first := roundMatches(t, database, seed.ZoneID, 1)[0]
	later := roundMatches(t, database, seed.ZoneID, 2)[0]

	_, err = svc.RecordResult(ctx, first.ID, nil)
	require.ErrorIs(t, err, tournament.ErrValidation)

	_, err = svc.RecordResult(ctx, first.ID, []models.CategoryScore{{CategoryID: 999, HomeScore: 1}})
	require.ErrorIs(t, err, tournament.ErrValidation)

	_, err = svc.RecordResult(ctx, first.ID, []models.CategoryScore{{CategoryID: seed.CategoryIDs[0], HomeScore: -1}})
	require.ErrorIs(t, err, tournament.ErrValidation)

	_, err = svc.RecordResult(ctx, later.ID, []models.CategoryScore{{CategoryID: seed.CategoryIDs[0], HomeScore: 1}})
	require.ErrorIs(t, err, matchday.ErrRoundLocked)

	_, err = svc.RecordResult(ctx, 12345, []models.CategoryScore{{CategoryID: seed.CategoryIDs[0]}})
	require.ErrorIs(t, err, tournament.ErrNotFound)

	m, err := svc.RecordResult(ctx, first.ID, []models.CategoryScore{{CategoryID: seed.CategoryIDs[0], HomeScore: 2, AwayScore: 2}})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, m.Status, "one category still unscored")

	m, err = svc.RecordResult(ctx, first.ID, []models.CategoryScore{{CategoryID: seed.CategoryIDs[1], HomeScore: 0, AwayScore: 1}})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, m.Status)
}

func TestFinalizeWithPartiallyScoredMatchIsIncomplete(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 2)
	svc := newService(database)
	ctx := context.Background()

	_, err := svc.GenerateZone(ctx, seed.ZoneID, tournament.Options{DoubleRound: true})
	require.NoError(t, err)
	round1 := roundMatches(t, database, seed.ZoneID, 1)
	require.Len(t, round1, 1)

	finishMatches(t, svc, database, round1, seed.CategoryIDs[:1])
	res, err := svc.Finalize(ctx, seed.ZoneID, 1)
	require.NoError(t, err)
	assert.Equal(t, matchday.StatusIncomplete, res.Transition.To)
	assert.Zero(t, res.Transition.Unlocked)
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM round_events WHERE zone_id = ?`, seed.ZoneID))

	finishMatches(t, svc, database, round1, seed.CategoryIDs[1:])
	res, err = svc.Finalize(ctx, seed.ZoneID, 1)
	require.NoError(t, err)
	assert.Equal(t, matchday.StatusPlayed, res.Transition.To)
	assert.Equal(t, 2, res.Transition.Unlocked)
	assert.Equal(t, 1, count(t, database, `SELECT COUNT(*) FROM round_events WHERE zone_id = ?`, seed.ZoneID))
}

func TestCorrectingPlayedRoundQueuesRoundEvent(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := testutil.SeedZone(t, database, 4)
	svc := newService(database)
	ctx := context.Background()

	_, err := svc.GenerateZone(ctx, seed.ZoneID, tournament.Options{DoubleRound: false})
	require.NoError(t, err)
	round1 := roundMatches(t, database, seed.ZoneID, 1)
	finishMatches(t, svc, database, round1, seed.CategoryIDs)
	_, err = svc.Finalize(ctx, seed.ZoneID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, database, `SELECT COUNT(*) FROM round_events WHERE zone_id = ? AND round = 1`, seed.ZoneID))

	// Scoring the unlocked round does not queue anything until it is finalized.
	round2 := roundMatches(t, database, seed.ZoneID, 2)
	finishMatches(t, svc, database, round2[:1], seed.CategoryIDs)
	assert.Zero(t, count(t, database, `SELECT COUNT(*) FROM round_events WHERE zone_id = ? AND round = 2`, seed.ZoneID))

	m, err := svc.RecordResult(ctx, round1[0].ID, []models.CategoryScore{{CategoryID: seed.CategoryIDs[0], HomeScore: 0, AwayScore: 4}})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, m.Status)
	assert.Equal(t, 2, count(t, database, `SELECT COUNT(*) FROM round_events WHERE zone_id = ? AND round = 1 AND dispatched_at IS NULL`, seed.ZoneID))
	assert.Equal(t, []matchday.Status{matchday.StatusPlayed, matchday.StatusInProgress, matchday.StatusPending}, ledger(t, svc, seed.ZoneID))
}
