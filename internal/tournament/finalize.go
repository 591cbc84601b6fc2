package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/lock"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/matchday"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

// FinalizeResult is the outcome of closing a round.
type FinalizeResult struct {
	ZoneID     int64
	Transition matchday.Transition
}

// Finalize closes round of zoneID. A round whose matches all finished
// becomes PLAYED, unlocks the next pending round and queues a round finished
// event; otherwise it becomes INCOMPLETE and no other round changes.
func (s *Service) Finalize(ctx context.Context, zoneID int64, round int) (FinalizeResult, error) {
	logger := log.Ctx(ctx).With().Int64("zone_id", zoneID).Int("round", round).Logger()

	if round < 1 {
		return FinalizeResult{}, &ValidationError{ZoneID: zoneID, Reason: "round must be 1 or greater", Err: matchday.ErrRoundOutOfSpan}
	}

	unlock, err := s.locker.Lock(ctx, lock.ZoneKey(zoneID))
	if err != nil {
		return FinalizeResult{}, s.finalizeError(ctx, fmt.Errorf("lock zone: %w", err))
	}
	defer unlock()

	uow, err := s.begin(ctx)
	if err != nil {
		return FinalizeResult{}, s.finalizeError(ctx, fmt.Errorf("begin: %w", err))
	}
	defer func() {
		if rbErr := uow.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to roll back finalize")
		}
	}()

	if _, err := uow.GetZone(ctx, zoneID); err != nil {
		return FinalizeResult{}, s.finalizeError(ctx, notFound(err, "zone", zoneID))
	}

	current, err := uow.GetMatchday(ctx, zoneID, round)
	if err != nil {
		return FinalizeResult{}, s.finalizeError(ctx, notFound(err, "matchday", int64(round)))
	}

	var next *matchday.Status
	nextDay, err := uow.GetMatchday(ctx, zoneID, round+1)
	switch {
	case err == nil:
		next = &nextDay.Status
	case !errors.Is(err, sql.ErrNoRows):
		return FinalizeResult{}, s.finalizeError(ctx, fmt.Errorf("load matchday %d: %w", round+1, err))
	}

	statuses, err := uow.ListRoundMatchStatuses(ctx, zoneID, round)
	if err != nil {
		return FinalizeResult{}, s.finalizeError(ctx, fmt.Errorf("list match statuses: %w", err))
	}
	finished := make([]bool, len(statuses))
	for i, st := range statuses {
		finished[i] = st == models.MatchStatusFinished
	}

	tr, err := matchday.Finalize(round, current.Status, next, finished)
	switch {
	case errors.Is(err, matchday.ErrRoundLocked):
		return FinalizeResult{}, &ValidationError{
			ZoneID: zoneID,
			Reason: fmt.Sprintf("matchday %d is locked until the previous one is played", round),
			Err:    err,
		}
	case errors.Is(err, matchday.ErrNoMatches):
		return FinalizeResult{}, &NotFoundError{Entity: "matches for matchday", ID: int64(round)}
	case err != nil:
		return FinalizeResult{}, s.finalizeError(ctx, err)
	}

	if err := uow.UpdateMatchdayStatus(ctx, zoneID, round, tr.To); err != nil {
		return FinalizeResult{}, s.finalizeError(ctx, fmt.Errorf("update matchday %d: %w", round, err))
	}
	if tr.Unlocked > 0 {
		if err := uow.UpdateMatchdayStatus(ctx, zoneID, tr.Unlocked, matchday.StatusInProgress); err != nil {
			return FinalizeResult{}, s.finalizeError(ctx, fmt.Errorf("unlock matchday %d: %w", tr.Unlocked, err))
		}
	}
	if tr.Finished() {
		if err := uow.CreateRoundEvent(ctx, zoneID, round); err != nil {
			return FinalizeResult{}, s.finalizeError(ctx, fmt.Errorf("queue round event: %w", err))
		}
	}

	if err := uow.Commit(); err != nil {
		return FinalizeResult{}, s.finalizeError(ctx, err)
	}

	logger.Info().
		Str("from", string(tr.From)).
		Str("to", string(tr.To)).
		Int("unlocked_round", tr.Unlocked).
		Msg("Matchday finalized")
	return FinalizeResult{ZoneID: zoneID, Transition: tr}, nil
}

func (s *Service) finalizeError(ctx context.Context, err error) error {
	if isClientError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	log.Ctx(ctx).Error().Err(err).Msg("Matchday finalize failed")
	return ErrFinalizeFailed
}
