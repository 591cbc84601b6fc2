// cmd/server/server.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/fixtures"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/matchdays"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/results"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/config"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/db"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/events"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/lock"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/ratelimit"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/scheduler"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/standings"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

// app owns every long-lived dependency of the server process.
type app struct {
	database   *db.DB
	redis      *redis.Client
	amqp       *events.AMQPPublisher
	service    *tournament.Service
	recomputer *standings.Recomputer
	limiter    *ratelimit.Limiter
	buckets    *ratelimit.IPBuckets
	scheduler  *scheduler.Service
	closeOnce  sync.Once
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.database = database

	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.Enabled() {
		client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
		locker = lock.NewRedis(client, cfg.Redis.LockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis zone locks")
	}

	a.service = tournament.NewService(
		database.Queries,
		tournament.Beginner(database.Begin),
		tournament.WithLocker(locker),
	)
	a.recomputer = standings.NewRecomputer(database)

	publishers := events.Multi{a.recomputer}
	if cfg.AMQP.Enabled() {
		publisher, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		a.amqp = publisher
		publishers = append(publishers, publisher)
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Publishing round events to AMQP")
	}
	dispatcher := events.NewDispatcher(database.Queries, publishers, cfg.Scheduler.DispatchBatch)

	a.limiter = ratelimit.New(&ratelimit.Config{
		GenerateCooldown:     cfg.RateLimit.GenerateCooldown,
		GenerateMaxIPPerHour: cfg.RateLimit.GeneratePerIPHourly,
		PreviewMaxIPPerHour:  cfg.RateLimit.PreviewPerIPHourly,
	})
	a.buckets = ratelimit.NewIPBuckets(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, nil)

	sched, err := scheduler.New()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	a.scheduler = sched
	if err := scheduler.RegisterDispatchJob(sched, dispatcher, cfg.Scheduler.DispatchCron); err != nil {
		return nil, err
	}
	if err := scheduler.RegisterBucketSweepJob(sched, a.buckets); err != nil {
		return nil, err
	}

	ok = true
	return a, nil
}

func (a *app) close() {
	a.closeOnce.Do(func() {
		if a.limiter != nil {
			a.limiter.Close()
		}
		if a.amqp != nil {
			if err := a.amqp.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close AMQP connection")
			}
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Redis client")
			}
		}
		if a.database != nil {
			if err := a.database.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close database")
			}
		}
	})
}

func newServer(cfg *config.Config, a *app) *http.Server {
	fixtures.InitHandlers(fixtures.Deps{
		Service:    a.service,
		Limiter:    a.limiter,
		Defaults:   cfg.Fixture,
		TrustProxy: cfg.RateLimit.TrustProxy,
		Timeout:    cfg.App.RequestTimeout,
	})
	matchdays.InitHandlers(a.service)
	results.InitHandlers(a.service, a.recomputer)

	router := api.NewRouter(api.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Buckets:        a.buckets,
		TrustProxy:     cfg.RateLimit.TrustProxy,
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
