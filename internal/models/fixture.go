// Package models holds the flat values exchanged between storage and the
// scheduling services.
package models

import (
	"database/sql"
	"time"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/matchday"
)

const (
	ZoneStatusOpen     = "open"
	ZoneStatusLocked   = "locked"
	ZoneStatusFinished = "finished"

	MatchStatusScheduled = "scheduled"
	MatchStatusFinished  = "finished"
)

type Tournament struct {
	ID            int64
	Name          string
	Status        string
	FixtureLocked bool
}

type Zone struct {
	ID           int64
	TournamentID int64
	Name         string
	Status       string
}

type Club struct {
	ID   int64
	Name string
}

type Category struct {
	ID               int64
	TournamentID     int64
	Name             string
	KickoffTime      string
	CountsForGeneral bool
	Enabled          bool
}

type CreateMatchParams struct {
	ZoneID     int64
	Round      int
	Leg        string
	HomeClubID int64
	AwayClubID int64
	Status     string
}

type CreateMatchCategoryParams struct {
	MatchID          int64
	CategoryID       int64
	KickoffTime      string
	CountsForGeneral bool
}

type Match struct {
	ID         int64
	ZoneID     int64
	Round      int
	Leg        string
	HomeClubID int64
	AwayClubID int64
	Status     string
}

type Matchday struct {
	ZoneID    int64
	Round     int
	Status    matchday.Status
	UpdatedAt time.Time
}

// Generation records how a zone's fixture was derived so it can be replayed.
type Generation struct {
	ID           string
	TournamentID int64
	ZoneID       int64
	Seed         sql.NullInt64
	DoubleRound  bool
	Shuffle      bool
	TotalRounds  int
	CreatedAt    time.Time
}

type RoundEvent struct {
	ID        int64
	ZoneID    int64
	Round     int
	CreatedAt time.Time
}

type CategoryScore struct {
	CategoryID int64
	HomeScore  int64
	AwayScore  int64
}

// ResultRow is one scored category of a finished match that counts toward
// the general table.
type ResultRow struct {
	MatchID    int64
	HomeClubID int64
	AwayClubID int64
	HomeScore  int64
	AwayScore  int64
}

type Standing struct {
	ZoneID       int64  `json:"zoneId"`
	ClubID       int64  `json:"clubId"`
	ClubName     string `json:"clubName"`
	Position     int    `json:"position"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int64  `json:"goalsFor"`
	GoalsAgainst int64  `json:"goalsAgainst"`
	GoalDiff     int64  `json:"goalDiff"`
	Points       int    `json:"points"`
}
