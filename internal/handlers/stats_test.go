package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/reflection-tracker/internal/models"
	"github.com/sbilibin2017/reflection-tracker/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestStatsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	averages := &models.RatingAverages{
		Goals:         4,
		Progress:      3.33,
		Happiness:     4.13,
		Meaning:       6.67,
		Relationships: 7.1,
		Engagement:    9,
	}

	tests := []struct {
		name         string
		target       string
		mockToken    func(m *MockTokener)
		mockSvc      func(m *MockStatsProvider)
		expectedCode int
		expectedBody string
	}{
		{
			name:      "success",
			target:    "/stats/1",
			mockToken: aliceClaims,
			mockSvc: func(m *MockStatsProvider) {
				m.EXPECT().
					Stats(gomock.Any(), "alice", int64(1)).
					Return(averages, nil)
			},
			expectedCode: 200,
			expectedBody: `{"last_30_days_averages":{"goals":4,"progress":3.33,"happiness":4.13,"meaning":6.67,"relationships":7.1,"engagement":9}}`,
		},
		{
			name:      "empty window yields zeros",
			target:    "/stats/1",
			mockToken: aliceClaims,
			mockSvc: func(m *MockStatsProvider) {
				m.EXPECT().
					Stats(gomock.Any(), "alice", int64(1)).
					Return(&models.RatingAverages{}, nil)
			},
			expectedCode: 200,
			expectedBody: `{"last_30_days_averages":{"goals":0,"progress":0,"happiness":0,"meaning":0,"relationships":0,"engagement":0}}`,
		},
		{
			name:         "invalid user_id",
			target:       "/stats/abc",
			mockToken:    aliceClaims,
			expectedCode: 400,
		},
		{
			name:   "missing token",
			target: "/stats/1",
			mockToken: func(m *MockTokener) {
				m.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("", errors.New("authorization header missing"))
			},
			expectedCode: 401,
		},
		{
			name:      "cross-user stats",
			target:    "/stats/2",
			mockToken: aliceClaims,
			mockSvc: func(m *MockStatsProvider) {
				m.EXPECT().
					Stats(gomock.Any(), "alice", int64(2)).
					Return(nil, services.ErrAccessDenied)
			},
			expectedCode: 403,
		},
		{
			name:      "internal server error",
			target:    "/stats/1",
			mockToken: aliceClaims,
			mockSvc: func(m *MockStatsProvider) {
				m.EXPECT().
					Stats(gomock.Any(), "alice", int64(1)).
					Return(nil, errors.New("database failure"))
			},
			expectedCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTokener := NewMockTokener(ctrl)
			mockSvc := NewMockStatsProvider(ctrl)
			if tt.mockToken != nil {
				tt.mockToken(mockTokener)
			}
			if tt.mockSvc != nil {
				tt.mockSvc(mockSvc)
			}

			r := chi.NewRouter()
			r.Get("/stats/{user_id}", NewStatsHandler(mockSvc, mockTokener))

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}

			if tt.name == "success" {
				var resp StatsResponse
				err := json.Unmarshal(rr.Body.Bytes(), &resp)
				assert.NoError(t, err)
				assert.Equal(t, averages, resp.Last30DaysAverages)
			}
		})
	}
}
