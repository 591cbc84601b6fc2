// internal/api/results/handlers.go
package results

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/apiutil"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/standings"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

const (
	resultQueryTimeout = 10 * time.Second
	matchIDPathKey     = "matchID"
	zoneIDPathKey      = "zoneID"
)

var (
	service *tournament.Service
	table   *standings.Recomputer
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *tournament.Service, recomputer *standings.Recomputer) {
	if svc == nil || recomputer == nil {
		return
	}
	service = svc
	table = recomputer
}

type scoreRequest struct {
	CategoryID int64 `json:"categoryId"`
	HomeScore  int64 `json:"homeScore"`
	AwayScore  int64 `json:"awayScore"`
}

type resultRequest struct {
	Scores []scoreRequest `json:"scores"`
}

type matchResponse struct {
	ID         int64  `json:"id"`
	ZoneID     int64  `json:"zoneId"`
	Round      int    `json:"round"`
	Leg        string `json:"leg"`
	HomeClubID int64  `json:"homeClubId"`
	AwayClubID int64  `json:"awayClubId"`
	Status     string `json:"status"`
}

// PUT /api/v1/matches/{matchID}/result
func HandleRecordResult(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Tournament service not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.CodeInternal, "Internal server error", "")
		return
	}

	matchID, err := apiutil.PathID(r, matchIDPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}

	scores := make([]models.CategoryScore, 0, len(req.Scores))
	for _, s := range req.Scores {
		scores = append(scores, models.CategoryScore{CategoryID: s.CategoryID, HomeScore: s.HomeScore, AwayScore: s.AwayScore})
	}

	ctx, cancel := context.WithTimeout(r.Context(), resultQueryTimeout)
	defer cancel()

	m, err := service.RecordResult(ctx, matchID, scores)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	resp := matchResponse{
		ID:         m.ID,
		ZoneID:     m.ZoneID,
		Round:      m.Round,
		Leg:        m.Leg,
		HomeClubID: m.HomeClubID,
		AwayClubID: m.AwayClubID,
		Status:     m.Status,
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to write result response")
	}
}

// GET /api/v1/zones/{zoneID}/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil || table == nil {
		logger.Error().Msg("Standings handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.CodeInternal, "Internal server error", "")
		return
	}

	zoneID, err := apiutil.PathID(r, zoneIDPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), resultQueryTimeout)
	defer cancel()

	// Resolves the zone so unknown ids are 404 rather than an empty table.
	if _, err := service.ListMatchdays(ctx, zoneID); err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	rows, err := table.List(ctx, zoneID)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.Standing{}
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"zoneId": zoneID, "standings": rows}); err != nil {
		logger.Error().Err(err).Int64("zone_id", zoneID).Msg("Failed to write standings response")
	}
}
