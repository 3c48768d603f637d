package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sbilibin2017/reflection-tracker/internal/logger"
	"github.com/sbilibin2017/reflection-tracker/internal/models"
)

// Rating bounds for every dimension, inclusive.
const (
	RatingMin = 1
	RatingMax = 10
)

// Error variables
var (
	ErrAccessDenied     = errors.New("user_id does not match authenticated user")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
	ErrRatingOutOfRange = errors.New("rating out of range")
)

// EntryWriter defines write operations for daily entries.
type EntryWriter interface {
	Save(ctx context.Context, entry models.EntryDB) error
}

// EntryReader defines read operations for daily entries.
type EntryReader interface {
	ListByUserID(ctx context.Context, userID int64) ([]models.EntryDB, error)
	AveragesLast30Days(ctx context.Context, userID int64) (*models.EntryAveragesDB, error)
}

// EntryService handles entry submission, listing and 30-day stats.
// Every operation resolves the authenticated username to a user row and
// rejects requests whose target user_id belongs to someone else.
type EntryService struct {
	users  UserReader
	reader EntryReader
	writer EntryWriter
}

// NewEntryService creates a new EntryService instance.
func NewEntryService(users UserReader, reader EntryReader, writer EntryWriter) *EntryService {
	return &EntryService{
		users:  users,
		reader: reader,
		writer: writer,
	}
}

// Create validates and stores a new daily entry for the authenticated user.
func (svc *EntryService) Create(ctx context.Context, username string, entry models.EntryDB) error {
	if _, err := time.Parse("2006-01-02", entry.Date); err != nil {
		logger.Log.Errorw("invalid entry date", "date", entry.Date)
		return ErrInvalidDate
	}

	for _, rating := range []int{
		entry.GoalsRating, entry.ProgressRating, entry.HappinessRating,
		entry.MeaningRating, entry.RelationshipsRating, entry.EngagementRating,
	} {
		if rating < RatingMin || rating > RatingMax {
			logger.Log.Errorw("rating out of range", "rating", rating)
			return ErrRatingOutOfRange
		}
	}

	if err := svc.authorize(ctx, username, entry.UserID); err != nil {
		return err
	}

	if err := svc.writer.Save(ctx, entry); err != nil {
		logger.Log.Errorw("failed to save entry", "err", err)
		return err
	}

	return nil
}

// List returns all entries of the authenticated user, newest date first.
func (svc *EntryService) List(ctx context.Context, username string, userID int64) ([]models.EntryDB, error) {
	if err := svc.authorize(ctx, username, userID); err != nil {
		return nil, err
	}

	entries, err := svc.reader.ListByUserID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to list entries", "err", err)
		return nil, err
	}

	return entries, nil
}

// Stats returns the mean of each rating dimension over the trailing
// 30 days, rounded to 2 decimal places. An empty window yields zeros.
func (svc *EntryService) Stats(ctx context.Context, username string, userID int64) (*models.RatingAverages, error) {
	if err := svc.authorize(ctx, username, userID); err != nil {
		return nil, err
	}

	averages, err := svc.reader.AveragesLast30Days(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to compute averages", "err", err)
		return nil, err
	}

	return &models.RatingAverages{
		Goals:         round2(averages.Goals.Float64),
		Progress:      round2(averages.Progress.Float64),
		Happiness:     round2(averages.Happiness.Float64),
		Meaning:       round2(averages.Meaning.Float64),
		Relationships: round2(averages.Relationships.Float64),
		Engagement:    round2(averages.Engagement.Float64),
	}, nil
}

// authorize resolves the token's username and checks it owns userID.
func (svc *EntryService) authorize(ctx context.Context, username string, userID int64) error {
	user, err := svc.users.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to resolve token user", "err", err)
		return err
	}
	if user == nil {
		logger.Log.Errorw("token user does not exist", "username", username)
		return ErrUserDoesNotExist
	}
	if user.ID != userID {
		logger.Log.Errorw("cross-user access rejected",
			"username", username, "user_id", userID)
		return ErrAccessDenied
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
