package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/reflection-tracker/internal/models"
)

// StatsProvider defines the interface that the service must implement.
type StatsProvider interface {
	Stats(ctx context.Context, username string, userID int64) (*models.RatingAverages, error)
}

// StatsResponse represents the rolling 30-day averages response
// swagger:model StatsResponse
type StatsResponse struct {
	// Averages per dimension over the trailing 30 days
	Last30DaysAverages *models.RatingAverages `json:"last_30_days_averages"`
}

// NewStatsHandler returns an HTTP handler for the rolling 30-day averages.
// @Summary Get 30-day rating averages
// @Description Returns the arithmetic mean of each rating dimension over the trailing 30 days, rounded to 2 decimals. An empty window yields zeros.
// @Tags entries
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} handlers.StatsResponse "Averages per dimension"
// @Failure 400 {object} handlers.ErrorResponse "Invalid user_id"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "user_id belongs to another user"
// @Router /stats/{user_id} [get]
// @Security BearerAuth
func NewStatsHandler(svc StatsProvider, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := authenticate(ctx, w, r, tokener)
		if !ok {
			return
		}

		userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid user_id",
			})
			return
		}

		averages, err := svc.Stats(ctx, claims.Username, userID)
		if err != nil {
			writeEntryError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(StatsResponse{
			Last30DaysAverages: averages,
		})
	}
}
