package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/reflection-tracker/internal/jwt"
	"github.com/sbilibin2017/reflection-tracker/internal/logger"
	"github.com/sbilibin2017/reflection-tracker/internal/models"
	"github.com/sbilibin2017/reflection-tracker/internal/services"
)

// Tokener defines the token operations needed by protected handlers.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// EntryCreator defines the interface that the service must implement.
type EntryCreator interface {
	Create(ctx context.Context, username string, entry models.EntryDB) error
}

// EntryRequest represents the JSON body for entry submission
// swagger:model EntryRequest
type EntryRequest struct {
	// Target user id, must match the authenticated user
	// required: true
	UserID int64 `json:"user_id"`

	// Calendar date in YYYY-MM-DD format
	// required: true
	// default: 2025-01-15
	Date string `json:"date"`

	GoalsRating         int `json:"goals_rating"`
	ProgressRating      int `json:"progress_rating"`
	HappinessRating     int `json:"happiness_rating"`
	MeaningRating       int `json:"meaning_rating"`
	RelationshipsRating int `json:"relationships_rating"`
	EngagementRating    int `json:"engagement_rating"`
}

// EntryStatusResponse represents a successful entry submission response
// swagger:model EntryStatusResponse
type EntryStatusResponse struct {
	// Submission status
	// default: success
	Status string `json:"status"`
}

// NewCreateEntryHandler returns an HTTP handler for submitting a daily entry.
// @Summary Submit a daily entry
// @Description Stores six self-assessment ratings for a date. Ratings must be within 1..10.
// @Tags entries
// @Accept json
// @Produce json
// @Param entryRequest body handlers.EntryRequest true "Daily entry"
// @Success 200 {object} handlers.EntryStatusResponse "Entry stored"
// @Failure 400 {object} handlers.ErrorResponse "Invalid body, date or rating"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "user_id belongs to another user"
// @Router /entry/ [post]
// @Security BearerAuth
func NewCreateEntryHandler(svc EntryCreator, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := authenticate(ctx, w, r, tokener)
		if !ok {
			return
		}

		var req EntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		entry := models.EntryDB{
			UserID:              req.UserID,
			Date:                req.Date,
			GoalsRating:         req.GoalsRating,
			ProgressRating:      req.ProgressRating,
			HappinessRating:     req.HappinessRating,
			MeaningRating:       req.MeaningRating,
			RelationshipsRating: req.RelationshipsRating,
			EngagementRating:    req.EngagementRating,
		}

		if err := svc.Create(ctx, claims.Username, entry); err != nil {
			writeEntryError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(EntryStatusResponse{
			Status: "success",
		})
	}
}

// authenticate extracts and verifies the bearer token, writing a 401
// response on failure.
func authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, tokener Tokener) (*jwt.Claims, bool) {
	tokenStr, err := tokener.GetTokenFromRequest(ctx, r)
	if err != nil {
		logger.Log.Error("unauthorized request: missing or invalid token")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Unauthorized",
		})
		return nil, false
	}

	claims, err := tokener.GetClaims(ctx, tokenStr)
	if err != nil {
		logger.Log.Errorw("failed to parse token claims", "error", err)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Unauthorized",
		})
		return nil, false
	}

	return claims, true
}

// writeEntryError maps service errors onto HTTP statuses shared by the
// protected entry endpoints.
func writeEntryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrRatingOutOfRange):
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: err.Error(),
		})
	case errors.Is(err, services.ErrUserDoesNotExist):
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Unauthorized",
		})
	case errors.Is(err, services.ErrAccessDenied):
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Forbidden",
		})
	default:
		logger.Log.Errorw("internal server error", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Internal server error",
		})
	}
}
