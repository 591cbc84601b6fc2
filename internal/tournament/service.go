package tournament

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/fixture"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/lock"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

// Options controls how a fixture is generated. DefaultOptions returns the
// values used when a request leaves them out.
type Options struct {
	DoubleRound bool
	Shuffle     bool
	Seed        *int64
}

func DefaultOptions() Options {
	return Options{DoubleRound: true, Shuffle: true}
}

// ZoneSchedule is the generated fixture of one zone.
type ZoneSchedule struct {
	ZoneID   int64
	ZoneName string
	Schedule fixture.Schedule
}

func (z ZoneSchedule) TotalMatchdays() int {
	return z.Schedule.TotalMatchdays()
}

// Result reports a generation or preview. Every zone shares Seed.
type Result struct {
	TournamentID int64
	Seed         *int64
	Zones        []ZoneSchedule
}

// TotalMatchdays is the longest zone calendar.
func (r Result) TotalMatchdays() int {
	total := 0
	for _, z := range r.Zones {
		total = max(total, z.TotalMatchdays())
	}
	return total
}

type Service struct {
	store  Store
	begin  BeginFunc
	locker lock.Locker
	now    Clock
	newID  func() string
}

type Option func(*Service)

func WithClock(now Clock) Option {
	return func(s *Service) { s.now = now }
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

func NewService(store Store, begin BeginFunc, opts ...Option) *Service {
	s := &Service{
		store:  store,
		begin:  begin,
		locker: lock.NewLocal(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateZone builds and stores the fixture of a single zone.
func (s *Service) GenerateZone(ctx context.Context, zoneID int64, opts Options) (Result, error) {
	return s.generate(ctx, func(ctx context.Context, r Reader) (target, error) {
		return resolveZone(ctx, r, zoneID)
	}, opts, true)
}

// PreviewZone runs the same checks and builder as GenerateZone without
// writing anything. Passing the returned seed back reproduces the rounds.
func (s *Service) PreviewZone(ctx context.Context, zoneID int64, opts Options) (Result, error) {
	return s.generate(ctx, func(ctx context.Context, r Reader) (target, error) {
		return resolveZone(ctx, r, zoneID)
	}, opts, false)
}

// GenerateTournament stores fixtures for every zone of the tournament, or
// only zoneIDs when given, all or nothing.
func (s *Service) GenerateTournament(ctx context.Context, tournamentID int64, zoneIDs []int64, opts Options) (Result, error) {
	return s.generate(ctx, func(ctx context.Context, r Reader) (target, error) {
		return resolveTournament(ctx, r, tournamentID, zoneIDs)
	}, opts, true)
}

func (s *Service) PreviewTournament(ctx context.Context, tournamentID int64, zoneIDs []int64, opts Options) (Result, error) {
	return s.generate(ctx, func(ctx context.Context, r Reader) (target, error) {
		return resolveTournament(ctx, r, tournamentID, zoneIDs)
	}, opts, false)
}

type resolver func(ctx context.Context, r Reader) (target, error)

func (s *Service) generate(ctx context.Context, resolve resolver, opts Options, commit bool) (Result, error) {
	logger := log.Ctx(ctx)

	tg, err := resolve(ctx, s.store)
	if err != nil {
		return Result{}, s.generationError(ctx, err)
	}

	seed := resolveSeed(opts)

	if !commit {
		plans, _, err := checkGate(ctx, s.store, tg)
		if err != nil {
			return Result{}, s.generationError(ctx, err)
		}
		return s.build(ctx, tg, plans, opts, seed)
	}

	keys := make([]string, len(tg.zones))
	for i, z := range tg.zones {
		keys[i] = lock.ZoneKey(z.ID)
	}
	unlock, err := lock.LockAll(ctx, s.locker, keys)
	if err != nil {
		return Result{}, s.generationError(ctx, fmt.Errorf("lock zones: %w", err))
	}
	defer unlock()

	uow, err := s.begin(ctx)
	if err != nil {
		return Result{}, s.generationError(ctx, fmt.Errorf("begin: %w", err))
	}
	defer func() {
		if rbErr := uow.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to roll back fixture generation")
		}
	}()

	// Re-resolve inside the unit of work so the gate sees committed state.
	tg, err = resolve(ctx, uow)
	if err != nil {
		return Result{}, s.generationError(ctx, err)
	}
	plans, categories, err := checkGate(ctx, uow, tg)
	if err != nil {
		return Result{}, s.generationError(ctx, err)
	}

	result, err := s.build(ctx, tg, plans, opts, seed)
	if err != nil {
		return Result{}, err
	}

	createdAt := s.now().UTC()
	for _, z := range result.Zones {
		err := materialize(ctx, uow, materializeInput{
			generationID: s.newID(),
			tournamentID: tg.tournament.ID,
			zoneID:       z.ZoneID,
			schedule:     z.Schedule,
			categories:   categories,
			shuffle:      opts.Shuffle || opts.Seed != nil,
			createdAt:    createdAt,
		})
		if err != nil {
			return Result{}, s.generationError(ctx, fmt.Errorf("zone %d: %w", z.ZoneID, err))
		}
	}

	if err := uow.Commit(); err != nil {
		return Result{}, s.generationError(ctx, err)
	}

	for _, z := range result.Zones {
		logger.Info().
			Int64("tournament_id", tg.tournament.ID).
			Int64("zone_id", z.ZoneID).
			Int("total_matchdays", z.TotalMatchdays()).
			Bool("double_round", opts.DoubleRound).
			Msg("Fixture generated")
	}
	return result, nil
}

func (s *Service) build(ctx context.Context, tg target, plans []zonePlan, opts Options, seed *int64) (Result, error) {
	result := Result{TournamentID: tg.tournament.ID, Seed: seed, Zones: make([]ZoneSchedule, 0, len(plans))}
	for _, p := range plans {
		schedule, err := fixture.Build(p.teams, fixture.Options{
			DoubleRound: opts.DoubleRound,
			Shuffle:     seed != nil,
			Seed:        seed,
		})
		if err != nil {
			return Result{}, s.generationError(ctx, fmt.Errorf("build zone %d: %w", p.zone.ID, err))
		}
		result.Zones = append(result.Zones, ZoneSchedule{ZoneID: p.zone.ID, ZoneName: p.zone.Name, Schedule: schedule})
	}
	return result, nil
}

// resolveSeed picks the one seed every zone of the request shuffles with.
func resolveSeed(opts Options) *int64 {
	if opts.Seed != nil {
		seed := *opts.Seed
		return &seed
	}
	if opts.Shuffle {
		seed := fixture.NewSeed()
		return &seed
	}
	return nil
}

// generationError passes caller-facing errors through and replaces anything
// else with ErrGenerationFailed after logging it.
func (s *Service) generationError(ctx context.Context, err error) error {
	if isClientError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	log.Ctx(ctx).Error().Err(err).Msg("Fixture generation failed")
	return ErrGenerationFailed
}

func isClientError(err error) bool {
	return errors.Is(err, ErrFixtureExists) || errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound)
}

// ListMatchdays returns the ledger of a zone in round order.
func (s *Service) ListMatchdays(ctx context.Context, zoneID int64) ([]models.Matchday, error) {
	if _, err := s.store.GetZone(ctx, zoneID); err != nil {
		return nil, notFound(err, "zone", zoneID)
	}
	days, err := s.store.ListMatchdays(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("list matchdays of zone %d: %w", zoneID, err)
	}
	return days, nil
}

// ListGenerations returns the recorded generations of a zone, newest first.
func (s *Service) ListGenerations(ctx context.Context, zoneID int64) ([]models.Generation, error) {
	if _, err := s.store.GetZone(ctx, zoneID); err != nil {
		return nil, notFound(err, "zone", zoneID)
	}
	gens, err := s.store.ListZoneGenerations(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("list generations of zone %d: %w", zoneID, err)
	}
	return gens, nil
}
