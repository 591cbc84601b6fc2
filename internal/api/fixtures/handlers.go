// internal/api/fixtures/handlers.go
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/apiutil"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/config"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/fixture"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/ratelimit"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

const (
	defaultQueryTimeout = 10 * time.Second
	zoneIDPathKey       = "zoneID"
	tournamentPathKey   = "tournamentID"
)

// Deps are the collaborators shared by every handler in this package.
type Deps struct {
	Service    *tournament.Service
	Limiter    *ratelimit.Limiter
	Defaults   config.FixtureConfig
	TrustProxy bool
	Timeout    time.Duration
}

var deps *Deps

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Deps) {
	if d.Service == nil {
		return
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultQueryTimeout
	}
	deps = &d
}

type zoneRequest struct {
	DoubleRound *bool  `json:"doubleRound"`
	Shuffle     *bool  `json:"shuffle"`
	Seed        *int64 `json:"seed"`
}

type tournamentRequest struct {
	zoneRequest
	ZoneIDs []int64 `json:"zoneIds"`
}

type generateResponse struct {
	Success        bool   `json:"success"`
	TotalMatchdays int    `json:"totalMatchdays"`
	Seed           *int64 `json:"seed"`
}

type zoneTotal struct {
	ZoneID         int64 `json:"zoneId"`
	TotalMatchdays int   `json:"totalMatchdays"`
}

type tournamentGenerateResponse struct {
	generateResponse
	Zones []zoneTotal `json:"zones"`
}

type zonePreview struct {
	ZoneID         int64              `json:"zoneId"`
	ZoneName       string             `json:"zoneName,omitempty"`
	DoubleRound    bool               `json:"doubleRound"`
	TotalMatchdays int                `json:"totalMatchdays"`
	Seed           *int64             `json:"seed"`
	Matchdays      []fixture.Matchday `json:"matchdays"`
}

type tournamentPreview struct {
	TournamentID   int64         `json:"tournamentId"`
	DoubleRound    bool          `json:"doubleRound"`
	TotalMatchdays int           `json:"totalMatchdays"`
	Seed           *int64        `json:"seed"`
	Zones          []zonePreview `json:"zones"`
}

type generationResponse struct {
	ID             string    `json:"id"`
	TournamentID   int64     `json:"tournamentId"`
	ZoneID         int64     `json:"zoneId"`
	Seed           *int64    `json:"seed"`
	DoubleRound    bool      `json:"doubleRound"`
	Shuffle        bool      `json:"shuffle"`
	TotalMatchdays int       `json:"totalMatchdays"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (req zoneRequest) options(defaults config.FixtureConfig) tournament.Options {
	opts := tournament.Options{
		DoubleRound: defaults.DoubleRound,
		Shuffle:     defaults.Shuffle,
		Seed:        req.Seed,
	}
	if req.DoubleRound != nil {
		opts.DoubleRound = *req.DoubleRound
	}
	if req.Shuffle != nil {
		opts.Shuffle = *req.Shuffle
	}
	return opts
}

// POST /api/v1/zones/{zoneID}/fixture
func HandleGenerateZone(w http.ResponseWriter, r *http.Request) {
	d, ok := loadDeps(w, r)
	if !ok {
		return
	}

	zoneID, err := apiutil.PathID(r, zoneIDPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	var req zoneRequest
	if err := apiutil.DecodeOptionalJSON(r, &req); err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	target := fmt.Sprintf("zone:%d", zoneID)
	if !allowGenerate(w, r, d, target) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), d.Timeout)
	defer cancel()

	res, err := d.Service.GenerateZone(ctx, zoneID, req.options(d.Defaults))
	recordGenerate(r, d, target, err)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	resp := generateResponse{Success: true, TotalMatchdays: res.TotalMatchdays(), Seed: res.Seed}
	if err := apiutil.WriteJSON(w, http.StatusCreated, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("zone_id", zoneID).Msg("Failed to write fixture response")
	}
}

// POST /api/v1/zones/{zoneID}/fixture/preview
func HandlePreviewZone(w http.ResponseWriter, r *http.Request) {
	d, ok := loadDeps(w, r)
	if !ok {
		return
	}

	zoneID, err := apiutil.PathID(r, zoneIDPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	var req zoneRequest
	if err := apiutil.DecodeOptionalJSON(r, &req); err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	if !allowPreview(w, r, d) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), d.Timeout)
	defer cancel()

	res, err := d.Service.PreviewZone(ctx, zoneID, req.options(d.Defaults))
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	if len(res.Zones) == 0 {
		apiutil.WriteServiceError(w, r, &tournament.NotFoundError{Entity: "zone", ID: zoneID})
		return
	}

	resp := previewOf(res.Zones[0], res.Seed)
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("zone_id", zoneID).Msg("Failed to write preview response")
	}
}

// POST /api/v1/tournaments/{tournamentID}/fixture
func HandleGenerateTournament(w http.ResponseWriter, r *http.Request) {
	d, ok := loadDeps(w, r)
	if !ok {
		return
	}

	tournamentID, err := apiutil.PathID(r, tournamentPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	var req tournamentRequest
	if err := apiutil.DecodeOptionalJSON(r, &req); err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	target := fmt.Sprintf("tournament:%d", tournamentID)
	if !allowGenerate(w, r, d, target) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), d.Timeout)
	defer cancel()

	res, err := d.Service.GenerateTournament(ctx, tournamentID, req.ZoneIDs, req.options(d.Defaults))
	recordGenerate(r, d, target, err)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	resp := tournamentGenerateResponse{
		generateResponse: generateResponse{Success: true, TotalMatchdays: res.TotalMatchdays(), Seed: res.Seed},
		Zones:            make([]zoneTotal, 0, len(res.Zones)),
	}
	for _, z := range res.Zones {
		resp.Zones = append(resp.Zones, zoneTotal{ZoneID: z.ZoneID, TotalMatchdays: z.TotalMatchdays()})
	}
	if err := apiutil.WriteJSON(w, http.StatusCreated, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("tournament_id", tournamentID).Msg("Failed to write fixture response")
	}
}

// POST /api/v1/tournaments/{tournamentID}/fixture/preview
func HandlePreviewTournament(w http.ResponseWriter, r *http.Request) {
	d, ok := loadDeps(w, r)
	if !ok {
		return
	}

	tournamentID, err := apiutil.PathID(r, tournamentPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	var req tournamentRequest
	if err := apiutil.DecodeOptionalJSON(r, &req); err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	if !allowPreview(w, r, d) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), d.Timeout)
	defer cancel()

	opts := req.options(d.Defaults)
	res, err := d.Service.PreviewTournament(ctx, tournamentID, req.ZoneIDs, opts)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	resp := tournamentPreview{
		TournamentID:   tournamentID,
		DoubleRound:    opts.DoubleRound,
		TotalMatchdays: res.TotalMatchdays(),
		Seed:           res.Seed,
		Zones:          make([]zonePreview, 0, len(res.Zones)),
	}
	for _, z := range res.Zones {
		resp.Zones = append(resp.Zones, previewOf(z, res.Seed))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("tournament_id", tournamentID).Msg("Failed to write preview response")
	}
}

// GET /api/v1/zones/{zoneID}/fixture/generations
func HandleListGenerations(w http.ResponseWriter, r *http.Request) {
	d, ok := loadDeps(w, r)
	if !ok {
		return
	}

	zoneID, err := apiutil.PathID(r, zoneIDPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), d.Timeout)
	defer cancel()

	gens, err := d.Service.ListGenerations(ctx, zoneID)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	out := make([]generationResponse, 0, len(gens))
	for _, g := range gens {
		out = append(out, generationOf(g))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"generations": out}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("zone_id", zoneID).Msg("Failed to write generations response")
	}
}

func previewOf(z tournament.ZoneSchedule, seed *int64) zonePreview {
	return zonePreview{
		ZoneID:         z.ZoneID,
		ZoneName:       z.ZoneName,
		DoubleRound:    z.Schedule.DoubleRound,
		TotalMatchdays: z.TotalMatchdays(),
		Seed:           seed,
		Matchdays:      z.Schedule.Matchdays(),
	}
}

func generationOf(g models.Generation) generationResponse {
	resp := generationResponse{
		ID:             g.ID,
		TournamentID:   g.TournamentID,
		ZoneID:         g.ZoneID,
		DoubleRound:    g.DoubleRound,
		Shuffle:        g.Shuffle,
		TotalMatchdays: g.TotalRounds,
		CreatedAt:      g.CreatedAt,
	}
	if g.Seed.Valid {
		seed := g.Seed.Int64
		resp.Seed = &seed
	}
	return resp
}

func allowGenerate(w http.ResponseWriter, r *http.Request, d *Deps, target string) bool {
	if d.Limiter == nil {
		return true
	}
	ip := ratelimit.GetClientIP(r, d.TrustProxy)
	result := d.Limiter.CheckGenerate(target, ip)
	if !result.Allowed {
		ratelimit.LogRateLimitExceeded(r.Context(), "generate", target, ip, result.Reason)
		writeRateLimited(w, result.RetryAfter)
		return false
	}
	return true
}

// recordGenerate starts the cooldown of target after an attempt that reached
// storage. Requests rejected by the gate leave it untouched.
func recordGenerate(r *http.Request, d *Deps, target string, err error) {
	if d.Limiter == nil {
		return
	}
	if err != nil && !errors.Is(err, tournament.ErrGenerationFailed) && !errors.Is(err, context.DeadlineExceeded) {
		return
	}
	d.Limiter.RecordGenerate(target, ratelimit.GetClientIP(r, d.TrustProxy))
}

func allowPreview(w http.ResponseWriter, r *http.Request, d *Deps) bool {
	if d.Limiter == nil {
		return true
	}
	ip := ratelimit.GetClientIP(r, d.TrustProxy)
	result := d.Limiter.CheckPreview(ip)
	if !result.Allowed {
		ratelimit.LogRateLimitExceeded(r.Context(), "preview", "", ip, result.Reason)
		writeRateLimited(w, result.RetryAfter)
		return false
	}
	d.Limiter.RecordPreview(ip)
	return true
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	apiutil.WriteError(w, http.StatusTooManyRequests, apiutil.CodeRateLimited, "Too many fixture requests", "")
}

func loadDeps(w http.ResponseWriter, r *http.Request) (*Deps, bool) {
	if deps == nil {
		log.Ctx(r.Context()).Error().Msg("Fixture handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.CodeInternal, "Internal server error", "")
		return nil, false
	}
	return deps, true
}
