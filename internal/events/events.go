// Package events delivers the round finished signal written to the outbox
// by matchday finalization.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const RoundFinishedRoutingKey = "round.finished"

type RoundFinished struct {
	EventID    int64     `json:"eventId"`
	ZoneID     int64     `json:"zoneId"`
	Round      int       `json:"round"`
	FinishedAt time.Time `json:"finishedAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev RoundFinished) error
}

// PublisherFunc lets in-process listeners subscribe with a plain function.
type PublisherFunc func(ctx context.Context, ev RoundFinished) error

func (f PublisherFunc) Publish(ctx context.Context, ev RoundFinished) error {
	return f(ctx, ev)
}

// Multi publishes to every publisher and joins their errors. A failure in one
// does not stop the others.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev RoundFinished) error {
	var errs []error
	for i, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("publisher %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
