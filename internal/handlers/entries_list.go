package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/reflection-tracker/internal/models"
)

// EntryLister defines the interface that the service must implement.
type EntryLister interface {
	List(ctx context.Context, username string, userID int64) ([]models.EntryDB, error)
}

// NewListEntriesHandler returns an HTTP handler that lists all entries
// for a user, newest date first.
// @Summary List entries for a user
// @Description Returns every stored entry for the user, ordered by date descending
// @Tags entries
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {array} models.EntryDB "Entry rows"
// @Failure 400 {object} handlers.ErrorResponse "Invalid user_id"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "user_id belongs to another user"
// @Router /entries/{user_id} [get]
// @Security BearerAuth
func NewListEntriesHandler(svc EntryLister, tokener Tokener) http.HandlerFunc {
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

		entries, err := svc.List(ctx, claims.Username, userID)
		if err != nil {
			writeEntryError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(entries)
	}
}
