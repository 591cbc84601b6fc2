// Package tournament turns zone rosters into stored fixtures and moves the
// matchday ledger forward as rounds are played.
package tournament

import (
	"context"
	"time"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/matchday"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

// Reader is the read side needed to validate a generation request.
type Reader interface {
	GetTournament(ctx context.Context, id int64) (models.Tournament, error)
	GetZone(ctx context.Context, id int64) (models.Zone, error)
	ListZonesByTournament(ctx context.Context, tournamentID int64) ([]models.Zone, error)
	ListZoneClubIDs(ctx context.Context, zoneID int64) ([]int64, error)
	ListEnabledCategories(ctx context.Context, tournamentID int64) ([]models.Category, error)
	CountZoneMatches(ctx context.Context, zoneID int64) (int64, error)
}

// Writer persists a generated fixture.
type Writer interface {
	DeleteZoneMatchdays(ctx context.Context, zoneID int64) error
	CreateMatch(ctx context.Context, arg models.CreateMatchParams) (int64, error)
	CreateMatchCategory(ctx context.Context, arg models.CreateMatchCategoryParams) error
	CreateMatchday(ctx context.Context, arg models.Matchday) error
	CreateGeneration(ctx context.Context, arg models.Generation) error
}

// Ledger reads and advances matchday status.
type Ledger interface {
	GetMatchday(ctx context.Context, zoneID int64, round int) (models.Matchday, error)
	ListRoundMatchStatuses(ctx context.Context, zoneID int64, round int) ([]string, error)
	UpdateMatchdayStatus(ctx context.Context, zoneID int64, round int, status matchday.Status) error
	CreateRoundEvent(ctx context.Context, zoneID int64, round int) error
}

// Results records match outcomes.
type Results interface {
	GetMatch(ctx context.Context, id int64) (models.Match, error)
	UpdateMatchCategoryScore(ctx context.Context, matchID int64, score models.CategoryScore) (int64, error)
	CountUnscoredMatchCategories(ctx context.Context, matchID int64) (int64, error)
	UpdateMatchStatus(ctx context.Context, matchID int64, status string) error
}

// UnitOfWork groups every write of one operation. Nothing is visible to
// other callers until Commit; Rollback after Commit is a no-op.
type UnitOfWork interface {
	Reader
	Writer
	Ledger
	Results
	Commit() error
	Rollback() error
}

type BeginFunc func(ctx context.Context) (UnitOfWork, error)

// Beginner adapts a concrete transaction constructor to a BeginFunc.
func Beginner[T UnitOfWork](begin func(context.Context) (T, error)) BeginFunc {
	return func(ctx context.Context) (UnitOfWork, error) {
		uow, err := begin(ctx)
		if err != nil {
			return nil, err
		}
		return uow, nil
	}
}

// Store serves reads that do not need a unit of work.
type Store interface {
	Reader
	GetMatch(ctx context.Context, id int64) (models.Match, error)
	ListMatchdays(ctx context.Context, zoneID int64) ([]models.Matchday, error)
	ListZoneGenerations(ctx context.Context, zoneID int64) ([]models.Generation, error)
}

type Clock func() time.Time
