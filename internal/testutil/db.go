package testutil

import (
	"path/filepath"
	"testing"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// Exec runs a statement and returns the inserted row id.
func Exec(t *testing.T, database *db.DB, query string, args ...any) int64 {
	t.Helper()

	res, err := database.Exec(query, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}

// Seed is the data created by SeedZone.
type Seed struct {
	TournamentID int64
	ZoneID       int64
	ClubIDs      []int64
	CategoryIDs  []int64
}

// SeedTournament inserts an open tournament with two enabled categories.
func SeedTournament(t *testing.T, database *db.DB, name string) (int64, []int64) {
	t.Helper()

	tournamentID := Exec(t, database, `INSERT INTO tournaments (name, status) VALUES (?, 'active')`, name)
	first := Exec(t, database,
		`INSERT INTO categories (tournament_id, name, kickoff_time, counts_for_general) VALUES (?, 'Primera', '15:30', 1)`,
		tournamentID)
	youth := Exec(t, database,
		`INSERT INTO categories (tournament_id, name, kickoff_time, counts_for_general) VALUES (?, 'Sub 15', '11:00', 0)`,
		tournamentID)
	return tournamentID, []int64{first, youth}
}

// SeedZoneIn adds an open zone with the given number of fresh clubs.
func SeedZoneIn(t *testing.T, database *db.DB, tournamentID int64, name string, clubs int) (int64, []int64) {
	t.Helper()

	zoneID := Exec(t, database, `INSERT INTO zones (tournament_id, name, status) VALUES (?, ?, 'open')`, tournamentID, name)
	clubIDs := make([]int64, 0, clubs)
	for i := 0; i < clubs; i++ {
		clubID := Exec(t, database, `INSERT INTO clubs (name) VALUES (?)`, name+" club "+string(rune('A'+i)))
		Exec(t, database, `INSERT INTO zone_clubs (zone_id, club_id) VALUES (?, ?)`, zoneID, clubID)
		clubIDs = append(clubIDs, clubID)
	}
	return zoneID, clubIDs
}

// SeedZone creates a tournament with a single zone of the given size.
func SeedZone(t *testing.T, database *db.DB, clubs int) Seed {
	t.Helper()

	tournamentID, categoryIDs := SeedTournament(t, database, "Torneo Apertura")
	zoneID, clubIDs := SeedZoneIn(t, database, tournamentID, "Zona A", clubs)
	return Seed{
		TournamentID: tournamentID,
		ZoneID:       zoneID,
		ClubIDs:      clubIDs,
		CategoryIDs:  categoryIDs,
	}
}
