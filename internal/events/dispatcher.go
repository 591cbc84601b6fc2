package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

type Outbox interface {
	ListPendingRoundEvents(ctx context.Context, limit int) ([]models.RoundEvent, error)
	MarkRoundEventDispatched(ctx context.Context, id int64, at time.Time) error
}

// Dispatcher drains the outbox in insertion order. An event is marked only
// after every publisher accepted it, so delivery is at least once.
type Dispatcher struct {
	outbox    Outbox
	publisher Publisher
	batch     int
	now       func() time.Time
}

func NewDispatcher(outbox Outbox, publisher Publisher, batch int) *Dispatcher {
	if batch <= 0 {
		batch = 50
	}
	return &Dispatcher{outbox: outbox, publisher: publisher, batch: batch, now: time.Now}
}

// DispatchPending publishes up to one batch and returns how many events were
// delivered. It stops at the first failure so later rounds never overtake an
// earlier one.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	pending, err := d.outbox.ListPendingRoundEvents(ctx, d.batch)
	if err != nil {
		return 0, fmt.Errorf("list pending round events: %w", err)
	}

	delivered := 0
	for _, e := range pending {
		ev := RoundFinished{
			EventID:    e.ID,
			ZoneID:     e.ZoneID,
			Round:      e.Round,
			FinishedAt: e.CreatedAt,
		}
		if err := d.publisher.Publish(ctx, ev); err != nil {
			return delivered, fmt.Errorf("publish round event %d: %w", e.ID, err)
		}
		if err := d.outbox.MarkRoundEventDispatched(ctx, e.ID, d.now()); err != nil {
			return delivered, fmt.Errorf("mark round event %d: %w", e.ID, err)
		}
		delivered++
	}

	if delivered > 0 {
		log.Ctx(ctx).Info().Int("delivered", delivered).Msg("Round events dispatched")
	}
	return delivered, nil
}
