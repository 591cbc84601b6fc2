package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/matchday"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const getTournament = `SELECT id, name, status, fixture_locked FROM tournaments WHERE id = ?`

func (q *Queries) GetTournament(ctx context.Context, id int64) (models.Tournament, error) {
	var t models.Tournament
	err := q.db.QueryRowContext(ctx, getTournament, id).Scan(&t.ID, &t.Name, &t.Status, &t.FixtureLocked)
	return t, err
}

const getZone = `SELECT id, tournament_id, name, status FROM zones WHERE id = ?`

func (q *Queries) GetZone(ctx context.Context, id int64) (models.Zone, error) {
	var z models.Zone
	err := q.db.QueryRowContext(ctx, getZone, id).Scan(&z.ID, &z.TournamentID, &z.Name, &z.Status)
	return z, err
}

const listZonesByTournament = `SELECT id, tournament_id, name, status FROM zones WHERE tournament_id = ? ORDER BY id`

func (q *Queries) ListZonesByTournament(ctx context.Context, tournamentID int64) ([]models.Zone, error) {
	rows, err := q.db.QueryContext(ctx, listZonesByTournament, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []models.Zone
	for rows.Next() {
		var z models.Zone
		if err := rows.Scan(&z.ID, &z.TournamentID, &z.Name, &z.Status); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// Clubs come back in the order they were assigned to the zone.
const listZoneClubIDs = `SELECT club_id FROM zone_clubs WHERE zone_id = ? ORDER BY rowid`

func (q *Queries) ListZoneClubIDs(ctx context.Context, zoneID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listZoneClubIDs, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const listZoneClubs = `
SELECT c.id, c.name
FROM zone_clubs zc
JOIN clubs c ON c.id = zc.club_id
WHERE zc.zone_id = ?
ORDER BY zc.rowid`

func (q *Queries) ListZoneClubs(ctx context.Context, zoneID int64) ([]models.Club, error) {
	rows, err := q.db.QueryContext(ctx, listZoneClubs, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clubs []models.Club
	for rows.Next() {
		var c models.Club
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

const listEnabledCategories = `
SELECT id, tournament_id, name, kickoff_time, counts_for_general, enabled
FROM categories
WHERE tournament_id = ? AND enabled = 1
ORDER BY id`

func (q *Queries) ListEnabledCategories(ctx context.Context, tournamentID int64) ([]models.Category, error) {
	rows, err := q.db.QueryContext(ctx, listEnabledCategories, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.TournamentID, &c.Name, &c.KickoffTime, &c.CountsForGeneral, &c.Enabled); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const countZoneMatches = `SELECT COUNT(*) FROM matches WHERE zone_id = ?`

func (q *Queries) CountZoneMatches(ctx context.Context, zoneID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countZoneMatches, zoneID).Scan(&n)
	return n, err
}

const deleteZoneMatchdays = `DELETE FROM matchdays WHERE zone_id = ?`

func (q *Queries) DeleteZoneMatchdays(ctx context.Context, zoneID int64) error {
	_, err := q.db.ExecContext(ctx, deleteZoneMatchdays, zoneID)
	return err
}

const createMatch = `
INSERT INTO matches (zone_id, round, leg, home_club_id, away_club_id, status)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateMatch(ctx context.Context, arg models.CreateMatchParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createMatch, arg.ZoneID, arg.Round, arg.Leg, arg.HomeClubID, arg.AwayClubID, arg.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const createMatchCategory = `
INSERT INTO match_categories (match_id, category_id, kickoff_time, counts_for_general)
VALUES (?, ?, ?, ?)`

func (q *Queries) CreateMatchCategory(ctx context.Context, arg models.CreateMatchCategoryParams) error {
	_, err := q.db.ExecContext(ctx, createMatchCategory, arg.MatchID, arg.CategoryID, arg.KickoffTime, arg.CountsForGeneral)
	return err
}

const getMatch = `SELECT id, zone_id, round, leg, home_club_id, away_club_id, status FROM matches WHERE id = ?`

func (q *Queries) GetMatch(ctx context.Context, id int64) (models.Match, error) {
	var m models.Match
	err := q.db.QueryRowContext(ctx, getMatch, id).Scan(&m.ID, &m.ZoneID, &m.Round, &m.Leg, &m.HomeClubID, &m.AwayClubID, &m.Status)
	return m, err
}

const listZoneMatches = `
SELECT id, zone_id, round, leg, home_club_id, away_club_id, status
FROM matches
WHERE zone_id = ?
ORDER BY round, id`

func (q *Queries) ListZoneMatches(ctx context.Context, zoneID int64) ([]models.Match, error) {
	rows, err := q.db.QueryContext(ctx, listZoneMatches, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.ZoneID, &m.Round, &m.Leg, &m.HomeClubID, &m.AwayClubID, &m.Status); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

const listRoundMatchStatuses = `SELECT status FROM matches WHERE zone_id = ? AND round = ? ORDER BY id`

func (q *Queries) ListRoundMatchStatuses(ctx context.Context, zoneID int64, round int) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listRoundMatchStatuses, zoneID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

const updateMatchStatus = `UPDATE matches SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) UpdateMatchStatus(ctx context.Context, matchID int64, status string) error {
	_, err := q.db.ExecContext(ctx, updateMatchStatus, status, matchID)
	return err
}

const updateMatchCategoryScore = `
UPDATE match_categories
SET home_score = ?, away_score = ?
WHERE match_id = ? AND category_id = ?`

// UpdateMatchCategoryScore returns the number of rows touched so callers can
// detect a category that is not part of the match.
func (q *Queries) UpdateMatchCategoryScore(ctx context.Context, matchID int64, score models.CategoryScore) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateMatchCategoryScore, score.HomeScore, score.AwayScore, matchID, score.CategoryID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countUnscoredMatchCategories = `
SELECT COUNT(*) FROM match_categories
WHERE match_id = ? AND (home_score IS NULL OR away_score IS NULL)`

func (q *Queries) CountUnscoredMatchCategories(ctx context.Context, matchID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUnscoredMatchCategories, matchID).Scan(&n)
	return n, err
}

const createMatchday = `INSERT INTO matchdays (zone_id, round, status) VALUES (?, ?, ?)`

func (q *Queries) CreateMatchday(ctx context.Context, arg models.Matchday) error {
	_, err := q.db.ExecContext(ctx, createMatchday, arg.ZoneID, arg.Round, string(arg.Status))
	return err
}

const getMatchday = `SELECT zone_id, round, status, updated_at FROM matchdays WHERE zone_id = ? AND round = ?`

func (q *Queries) GetMatchday(ctx context.Context, zoneID int64, round int) (models.Matchday, error) {
	var (
		m      models.Matchday
		status string
	)
	if err := q.db.QueryRowContext(ctx, getMatchday, zoneID, round).Scan(&m.ZoneID, &m.Round, &status, &m.UpdatedAt); err != nil {
		return models.Matchday{}, err
	}
	parsed, err := matchday.ParseStatus(status)
	if err != nil {
		return models.Matchday{}, fmt.Errorf("matchday %d/%d: %w", zoneID, round, err)
	}
	m.Status = parsed
	return m, nil
}

const listMatchdays = `SELECT zone_id, round, status, updated_at FROM matchdays WHERE zone_id = ? ORDER BY round`

func (q *Queries) ListMatchdays(ctx context.Context, zoneID int64) ([]models.Matchday, error) {
	rows, err := q.db.QueryContext(ctx, listMatchdays, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.Matchday
	for rows.Next() {
		var (
			m      models.Matchday
			status string
		)
		if err := rows.Scan(&m.ZoneID, &m.Round, &status, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if m.Status, err = matchday.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("matchday %d/%d: %w", m.ZoneID, m.Round, err)
		}
		days = append(days, m)
	}
	return days, rows.Err()
}

const updateMatchdayStatus = `
UPDATE matchdays SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE zone_id = ? AND round = ?`

func (q *Queries) UpdateMatchdayStatus(ctx context.Context, zoneID int64, round int, status matchday.Status) error {
	res, err := q.db.ExecContext(ctx, updateMatchdayStatus, string(status), zoneID, round)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const createGeneration = `
INSERT INTO fixture_generations (id, tournament_id, zone_id, seed, double_round, shuffle, total_rounds, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateGeneration(ctx context.Context, arg models.Generation) error {
	_, err := q.db.ExecContext(ctx, createGeneration,
		arg.ID, arg.TournamentID, arg.ZoneID, arg.Seed, arg.DoubleRound, arg.Shuffle, arg.TotalRounds, arg.CreatedAt.UTC())
	return err
}

const listZoneGenerations = `
SELECT id, tournament_id, zone_id, seed, double_round, shuffle, total_rounds, created_at
FROM fixture_generations
WHERE zone_id = ?
ORDER BY created_at DESC`

func (q *Queries) ListZoneGenerations(ctx context.Context, zoneID int64) ([]models.Generation, error) {
	rows, err := q.db.QueryContext(ctx, listZoneGenerations, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gens []models.Generation
	for rows.Next() {
		var g models.Generation
		if err := rows.Scan(&g.ID, &g.TournamentID, &g.ZoneID, &g.Seed, &g.DoubleRound, &g.Shuffle, &g.TotalRounds, &g.CreatedAt); err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, rows.Err()
}

const createRoundEvent = `INSERT INTO round_events (zone_id, round) VALUES (?, ?)`

func (q *Queries) CreateRoundEvent(ctx context.Context, zoneID int64, round int) error {
	_, err := q.db.ExecContext(ctx, createRoundEvent, zoneID, round)
	return err
}

const listPendingRoundEvents = `
SELECT id, zone_id, round, created_at
FROM round_events
WHERE dispatched_at IS NULL
ORDER BY id
LIMIT ?`

func (q *Queries) ListPendingRoundEvents(ctx context.Context, limit int) ([]models.RoundEvent, error) {
	rows, err := q.db.QueryContext(ctx, listPendingRoundEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.RoundEvent
	for rows.Next() {
		var e models.RoundEvent
		if err := rows.Scan(&e.ID, &e.ZoneID, &e.Round, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const markRoundEventDispatched = `UPDATE round_events SET dispatched_at = ? WHERE id = ? AND dispatched_at IS NULL`

func (q *Queries) MarkRoundEventDispatched(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, markRoundEventDispatched, at.UTC(), id)
	return err
}

// Only finished matches and categories flagged for the general table count.
const listZoneResults = `
SELECT m.id, m.home_club_id, m.away_club_id, mc.home_score, mc.away_score
FROM matches m
JOIN match_categories mc ON mc.match_id = m.id
WHERE m.zone_id = ?
  AND m.status = 'finished'
  AND mc.counts_for_general = 1
  AND mc.home_score IS NOT NULL
  AND mc.away_score IS NOT NULL
ORDER BY m.round, m.id, mc.category_id`

func (q *Queries) ListZoneResults(ctx context.Context, zoneID int64) ([]models.ResultRow, error) {
	rows, err := q.db.QueryContext(ctx, listZoneResults, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ResultRow
	for rows.Next() {
		var r models.ResultRow
		if err := rows.Scan(&r.MatchID, &r.HomeClubID, &r.AwayClubID, &r.HomeScore, &r.AwayScore); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

const deleteZoneStandings = `DELETE FROM standings WHERE zone_id = ?`

func (q *Queries) DeleteZoneStandings(ctx context.Context, zoneID int64) error {
	_, err := q.db.ExecContext(ctx, deleteZoneStandings, zoneID)
	return err
}

const createStanding = `
INSERT INTO standings (zone_id, club_id, position, played, won, drawn, lost, goals_for, goals_against, points)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateStanding(ctx context.Context, s models.Standing) error {
	_, err := q.db.ExecContext(ctx, createStanding,
		s.ZoneID, s.ClubID, s.Position, s.Played, s.Won, s.Drawn, s.Lost, s.GoalsFor, s.GoalsAgainst, s.Points)
	return err
}

const listStandings = `
SELECT s.zone_id, s.club_id, c.name, s.position, s.played, s.won, s.drawn, s.lost, s.goals_for, s.goals_against, s.points
FROM standings s
JOIN clubs c ON c.id = s.club_id
WHERE s.zone_id = ?
ORDER BY s.position`

func (q *Queries) ListStandings(ctx context.Context, zoneID int64) ([]models.Standing, error) {
	rows, err := q.db.QueryContext(ctx, listStandings, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []models.Standing
	for rows.Next() {
		var s models.Standing
		if err := rows.Scan(&s.ZoneID, &s.ClubID, &s.ClubName, &s.Position, &s.Played, &s.Won, &s.Drawn, &s.Lost, &s.GoalsFor, &s.GoalsAgainst, &s.Points); err != nil {
			return nil, err
		}
		s.GoalDiff = s.GoalsFor - s.GoalsAgainst
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
