// internal/api/matchdays/handlers.go
package matchdays

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/apiutil"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/matchday"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

const (
	matchdayQueryTimeout = 10 * time.Second
	zoneIDPathKey        = "zoneID"
	roundPathKey         = "round"
)

var service *tournament.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *tournament.Service) {
	if svc == nil {
		return
	}
	service = svc
}

type matchdayResponse struct {
	Round     int             `json:"round"`
	Status    matchday.Status `json:"status"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type finalizeResponse struct {
	ZoneID        int64           `json:"zoneId"`
	Round         int             `json:"round"`
	Status        matchday.Status `json:"status"`
	UnlockedRound *int            `json:"unlockedRound,omitempty"`
}

// GET /api/v1/zones/{zoneID}/matchdays
func HandleListMatchdays(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Tournament service not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.CodeInternal, "Internal server error", "")
		return
	}

	zoneID, err := apiutil.PathID(r, zoneIDPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchdayQueryTimeout)
	defer cancel()

	days, err := svc.ListMatchdays(ctx, zoneID)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	out := make([]matchdayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, matchdayResponse{Round: d.Round, Status: d.Status, UpdatedAt: d.UpdatedAt})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"zoneId": zoneID, "matchdays": out}); err != nil {
		logger.Error().Err(err).Int64("zone_id", zoneID).Msg("Failed to write matchdays response")
	}
}

// POST /api/v1/zones/{zoneID}/matchdays/{round}/finalize
func HandleFinalize(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Tournament service not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.CodeInternal, "Internal server error", "")
		return
	}

	zoneID, err := apiutil.PathID(r, zoneIDPathKey)
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(err))
		return
	}
	round, err := strconv.Atoi(chi.URLParam(r, roundPathKey))
	if err != nil {
		apiutil.WriteServiceError(w, r, apiutil.BadRequest(fmt.Errorf("%s must be a number", roundPathKey)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchdayQueryTimeout)
	defer cancel()

	res, err := svc.Finalize(ctx, zoneID, round)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	resp := finalizeResponse{ZoneID: res.ZoneID, Round: res.Transition.Round, Status: res.Transition.To}
	if res.Transition.Unlocked > 0 {
		unlocked := res.Transition.Unlocked
		resp.UnlockedRound = &unlocked
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("zone_id", zoneID).Int("round", round).Msg("Failed to write finalize response")
	}
}

func loadService() *tournament.Service {
	return service
}
