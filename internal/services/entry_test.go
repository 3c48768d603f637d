package services_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/reflection-tracker/internal/models"
	"github.com/sbilibin2017/reflection-tracker/internal/services"
	"github.com/stretchr/testify/assert"
)

func validEntry(userID int64) models.EntryDB {
	return models.EntryDB{
		UserID:              userID,
		Date:                "2025-01-15",
		GoalsRating:         3,
		ProgressRating:      4,
		HappinessRating:     5,
		MeaningRating:       6,
		RelationshipsRating: 7,
		EngagementRating:    8,
	}
}

func TestEntryService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alice := &models.UserDB{ID: 1, Username: "alice"}

	tests := []struct {
		name      string
		username  string
		entry     models.EntryDB
		user      *models.UserDB
		lookup    bool
		writerErr error
		wantErr   error
	}{
		{
			name:     "successful create",
			username: "alice",
			entry:    validEntry(1),
			user:     alice,
			lookup:   true,
		},
		{
			name:     "bad date format",
			username: "alice",
			entry: func() models.EntryDB {
				e := validEntry(1)
				e.Date = "15.01.2025"
				return e
			}(),
			wantErr: services.ErrInvalidDate,
		},
		{
			name:     "rating below range",
			username: "alice",
			entry: func() models.EntryDB {
				e := validEntry(1)
				e.HappinessRating = 0
				return e
			}(),
			wantErr: services.ErrRatingOutOfRange,
		},
		{
			name:     "rating above range",
			username: "alice",
			entry: func() models.EntryDB {
				e := validEntry(1)
				e.EngagementRating = 11
				return e
			}(),
			wantErr: services.ErrRatingOutOfRange,
		},
		{
			name:     "cross-user write rejected",
			username: "alice",
			entry:    validEntry(2),
			user:     alice,
			lookup:   true,
			wantErr:  services.ErrAccessDenied,
		},
		{
			name:     "token user no longer exists",
			username: "ghost",
			entry:    validEntry(1),
			user:     nil,
			lookup:   true,
			wantErr:  services.ErrUserDoesNotExist,
		},
		{
			name:      "writer error",
			username:  "alice",
			entry:     validEntry(1),
			user:      alice,
			lookup:    true,
			writerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := services.NewMockUserReader(ctrl)
			mockReader := services.NewMockEntryReader(ctrl)
			mockWriter := services.NewMockEntryWriter(ctrl)

			svc := services.NewEntryService(mockUsers, mockReader, mockWriter)

			if tt.lookup {
				mockUsers.EXPECT().
					GetByUsername(gomock.Any(), tt.username).
					Return(tt.user, nil)
			}
			if tt.user != nil && tt.user.ID == tt.entry.UserID {
				mockWriter.EXPECT().
					Save(gomock.Any(), tt.entry).
					Return(tt.writerErr)
			}

			err := svc.Create(context.Background(), tt.username, tt.entry)

			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntryService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alice := &models.UserDB{ID: 1, Username: "alice"}

	t.Run("returns entries newest first", func(t *testing.T) {
		mockUsers := services.NewMockUserReader(ctrl)
		mockReader := services.NewMockEntryReader(ctrl)
		mockWriter := services.NewMockEntryWriter(ctrl)

		svc := services.NewEntryService(mockUsers, mockReader, mockWriter)

		want := []models.EntryDB{
			{ID: 2, UserID: 1, Date: "2025-01-16"},
			{ID: 1, UserID: 1, Date: "2025-01-15"},
		}

		mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)
		mockReader.EXPECT().ListByUserID(gomock.Any(), int64(1)).Return(want, nil)

		entries, err := svc.List(context.Background(), "alice", 1)
		assert.NoError(t, err)
		assert.Equal(t, want, entries)
	})

	t.Run("empty history is not an error", func(t *testing.T) {
		mockUsers := services.NewMockUserReader(ctrl)
		mockReader := services.NewMockEntryReader(ctrl)
		mockWriter := services.NewMockEntryWriter(ctrl)

		svc := services.NewEntryService(mockUsers, mockReader, mockWriter)

		mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)
		mockReader.EXPECT().ListByUserID(gomock.Any(), int64(1)).Return([]models.EntryDB{}, nil)

		entries, err := svc.List(context.Background(), "alice", 1)
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("cross-user read rejected", func(t *testing.T) {
		mockUsers := services.NewMockUserReader(ctrl)
		mockReader := services.NewMockEntryReader(ctrl)
		mockWriter := services.NewMockEntryWriter(ctrl)

		svc := services.NewEntryService(mockUsers, mockReader, mockWriter)

		mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)

		entries, err := svc.List(context.Background(), "alice", 2)
		assert.ErrorIs(t, err, services.ErrAccessDenied)
		assert.Nil(t, entries)
	})
}

func TestEntryService_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alice := &models.UserDB{ID: 1, Username: "alice"}

	t.Run("rounds averages to 2 decimals", func(t *testing.T) {
		mockUsers := services.NewMockUserReader(ctrl)
		mockReader := services.NewMockEntryReader(ctrl)
		mockWriter := services.NewMockEntryWriter(ctrl)

		svc := services.NewEntryService(mockUsers, mockReader, mockWriter)

		mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)
		mockReader.EXPECT().AveragesLast30Days(gomock.Any(), int64(1)).Return(&models.EntryAveragesDB{
			Goals:         sql.NullFloat64{Float64: 4, Valid: true},
			Progress:      sql.NullFloat64{Float64: 10.0 / 3.0, Valid: true},
			Happiness:     sql.NullFloat64{Float64: 4.125, Valid: true},
			Meaning:       sql.NullFloat64{Float64: 6.666666, Valid: true},
			Relationships: sql.NullFloat64{Float64: 7.1, Valid: true},
			Engagement:    sql.NullFloat64{Float64: 8.999, Valid: true},
		}, nil)

		averages, err := svc.Stats(context.Background(), "alice", 1)
		assert.NoError(t, err)
		assert.Equal(t, &models.RatingAverages{
			Goals:         4,
			Progress:      3.33,
			Happiness:     4.13,
			Meaning:       6.67,
			Relationships: 7.1,
			Engagement:    9,
		}, averages)
	})

	t.Run("empty window yields zeros", func(t *testing.T) {
		mockUsers := services.NewMockUserReader(ctrl)
		mockReader := services.NewMockEntryReader(ctrl)
		mockWriter := services.NewMockEntryWriter(ctrl)

		svc := services.NewEntryService(mockUsers, mockReader, mockWriter)

		mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)
		mockReader.EXPECT().AveragesLast30Days(gomock.Any(), int64(1)).
			Return(&models.EntryAveragesDB{}, nil)

		averages, err := svc.Stats(context.Background(), "alice", 1)
		assert.NoError(t, err)
		assert.Equal(t, &models.RatingAverages{}, averages)
	})

	t.Run("cross-user stats rejected", func(t *testing.T) {
		mockUsers := services.NewMockUserReader(ctrl)
		mockReader := services.NewMockEntryReader(ctrl)
		mockWriter := services.NewMockEntryWriter(ctrl)

		svc := services.NewEntryService(mockUsers, mockReader, mockWriter)

		mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)

		averages, err := svc.Stats(context.Background(), "alice", 2)
		assert.ErrorIs(t, err, services.ErrAccessDenied)
		assert.Nil(t, averages)
	})

	t.Run("reader error propagates", func(t *testing.T) {
		mockUsers := services.NewMockUserReader(ctrl)
		mockReader := services.NewMockEntryReader(ctrl)
		mockWriter := services.NewMockEntryWriter(ctrl)

		svc := services.NewEntryService(mockUsers, mockReader, mockWriter)

		mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)
		mockReader.EXPECT().AveragesLast30Days(gomock.Any(), int64(1)).
			Return(nil, errors.New("db error"))

		averages, err := svc.Stats(context.Background(), "alice", 1)
		assert.EqualError(t, err, "db error")
		assert.Nil(t, averages)
	})
}
