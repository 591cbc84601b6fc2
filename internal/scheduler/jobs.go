package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/events"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/ratelimit"
)

const (
	roundEventsJobName = "round_events_dispatch"
	bucketSweepJobName = "ratelimit_bucket_sweep"
	bucketSweepCron    = "*/10 * * * *"
)

// RegisterDispatchJob drains the round event outbox on cronExpr. Runs never
// overlap, so events keep their order.
func RegisterDispatchJob(svc *Service, dispatcher *events.Dispatcher, cronExpr string) error {
	if dispatcher == nil {
		return fmt.Errorf("dispatch job requires a dispatcher")
	}

	jobLogger := log.With().
		Str("component", "round_events_job").
		Str("job_name", roundEventsJobName).
		Str("cron", cronExpr).
		Logger()

	_, err := svc.AddJob(roundEventsJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if _, err := dispatcher.DispatchPending(ctx); err != nil {
			jobLogger.Error().Err(err).Msg("Failed to dispatch round events")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add round events job: %w", err)
	}
	return nil
}

// RegisterBucketSweepJob forgets idle per-IP token buckets.
func RegisterBucketSweepJob(svc *Service, buckets *ratelimit.IPBuckets) error {
	if buckets == nil {
		return fmt.Errorf("sweep job requires buckets")
	}
	_, err := svc.AddJob(bucketSweepJobName, bucketSweepCron, func() {
		if removed := buckets.Sweep(); removed > 0 {
			log.Debug().Int("removed", removed).Msg("Idle rate limit buckets removed")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		return fmt.Errorf("add bucket sweep job: %w", err)
	}
	return nil
}
