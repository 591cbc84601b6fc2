package tournament

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/lock"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/matchday"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

// RecordResult stores per-category scores. The match is finished once every
// one of its categories has both scores. Scores of a played round can still
// be corrected; doing so queues a round event so the standings follow.
func (s *Service) RecordResult(ctx context.Context, matchID int64, scores []models.CategoryScore) (models.Match, error) {
	if len(scores) == 0 {
		return models.Match{}, &ValidationError{Reason: "at least one category score is required"}
	}
	seen := make(map[int64]struct{}, len(scores))
	for _, sc := range scores {
		if sc.HomeScore < 0 || sc.AwayScore < 0 {
			return models.Match{}, &ValidationError{CategoryID: sc.CategoryID, Reason: "scores cannot be negative"}
		}
		if _, dup := seen[sc.CategoryID]; dup {
			return models.Match{}, &ValidationError{CategoryID: sc.CategoryID, Reason: "category scored twice"}
		}
		seen[sc.CategoryID] = struct{}{}
	}

	// The match's zone is needed for the lock; read it outside the unit of work.
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, s.resultError(ctx, notFound(err, "match", matchID))
	}

	unlock, err := s.locker.Lock(ctx, lock.ZoneKey(m.ZoneID))
	if err != nil {
		return models.Match{}, s.resultError(ctx, fmt.Errorf("lock zone: %w", err))
	}
	defer unlock()

	uow, err := s.begin(ctx)
	if err != nil {
		return models.Match{}, s.resultError(ctx, fmt.Errorf("begin: %w", err))
	}
	defer func() {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.Ctx(ctx).Error().Err(rbErr).Msg("Failed to roll back result")
		}
	}()

	m, err = uow.GetMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, s.resultError(ctx, notFound(err, "match", matchID))
	}
	day, err := uow.GetMatchday(ctx, m.ZoneID, m.Round)
	if err != nil {
		return models.Match{}, s.resultError(ctx, notFound(err, "matchday", int64(m.Round)))
	}
	if day.Status == matchday.StatusPending {
		return models.Match{}, &ValidationError{
			ZoneID: m.ZoneID,
			Reason: fmt.Sprintf("matchday %d has not started", m.Round),
			Err:    matchday.ErrRoundLocked,
		}
	}

	for _, sc := range scores {
		n, err := uow.UpdateMatchCategoryScore(ctx, matchID, sc)
		if err != nil {
			return models.Match{}, s.resultError(ctx, fmt.Errorf("score category %d: %w", sc.CategoryID, err))
		}
		if n == 0 {
			return models.Match{}, &ValidationError{
				CategoryID: sc.CategoryID,
				Reason:     fmt.Sprintf("category is not played in match %d", matchID),
			}
		}
	}
	unscored, err := uow.CountUnscoredMatchCategories(ctx, matchID)
	if err != nil {
		return models.Match{}, s.resultError(ctx, fmt.Errorf("count unscored categories: %w", err))
	}
	status := models.MatchStatusScheduled
	if unscored == 0 {
		status = models.MatchStatusFinished
	}
	if status != m.Status {
		if err := uow.UpdateMatchStatus(ctx, matchID, status); err != nil {
			return models.Match{}, s.resultError(ctx, fmt.Errorf("update match status: %w", err))
		}
	}
	// Finalize never requeues a PLAYED round.
	corrected := day.Status == matchday.StatusPlayed
	if corrected {
		if err := uow.CreateRoundEvent(ctx, m.ZoneID, m.Round); err != nil {
			return models.Match{}, s.resultError(ctx, fmt.Errorf("queue round event: %w", err))
		}
	}
	if err := uow.Commit(); err != nil {
		return models.Match{}, s.resultError(ctx, err)
	}

	m.Status = status
	log.Ctx(ctx).Info().
		Int64("match_id", matchID).
		Int64("zone_id", m.ZoneID).
		Int("round", m.Round).
		Int64("unscored_categories", unscored).
		Bool("corrected", corrected).
		Msg("Match result recorded")
	return m, nil
}

func (s *Service) resultError(ctx context.Context, err error) error {
	if isClientError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	log.Ctx(ctx).Error().Err(err).Msg("Recording match result failed")
	return ErrResultFailed
}
