package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/reflection-tracker/internal/logger"
	"github.com/sbilibin2017/reflection-tracker/internal/services"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenResponse represents a successful token response
// swagger:model TokenResponse
type TokenResponse struct {
	// Signed bearer token
	// default: JWT_TOKEN
	AccessToken string `json:"access_token"`

	// Token type
	// default: bearer
	TokenType string `json:"token_type"`
}

// NewTokenHandler returns an HTTP handler that exchanges form-encoded
// credentials for a signed bearer token.
// @Summary Obtain a bearer token
// @Description Authenticate with form-encoded username/password and return a signed token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} handlers.TokenResponse "Token returned"
// @Failure 400 {object} handlers.ErrorResponse "Missing or incorrect credentials"
// @Router /token [post]
func NewTokenHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid form body",
			})
			return
		}

		username := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if username == "" || password == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "username and password are required",
			})
			return
		}

		token, err := svc.Login(r.Context(), username, password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidCredentials),
				errors.Is(err, services.ErrUserDoesNotExist):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Incorrect username or password",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	}
}
