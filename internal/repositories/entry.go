package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/reflection-tracker/internal/logger"
	"github.com/sbilibin2017/reflection-tracker/internal/models"
)

type EntryWriteRepository struct {
	db *sqlx.DB
}

func NewEntryWriteRepository(db *sqlx.DB) *EntryWriteRepository {
	return &EntryWriteRepository{db: db}
}

// Save appends a new daily entry row with a store-assigned id.
func (r *EntryWriteRepository) Save(ctx context.Context, entry models.EntryDB) error {
	const query = `
		INSERT INTO daily_entries
			(user_id, date, goals_rating, progress_rating, happiness_rating,
			 meaning_rating, relationships_rating, engagement_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{
		entry.UserID, entry.Date,
		entry.GoalsRating, entry.ProgressRating, entry.HappinessRating,
		entry.MeaningRating, entry.RelationshipsRating, entry.EngagementRating,
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	// Log with query in single line
	logger.Log.Infow("entry insert",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return err
}

type EntryReadRepository struct {
	db *sqlx.DB
}

func NewEntryReadRepository(db *sqlx.DB) *EntryReadRepository {
	return &EntryReadRepository{db: db}
}

// ListByUserID returns every entry for the user, newest date first.
// The date column is TEXT, so ordering is lexical.
func (r *EntryReadRepository) ListByUserID(ctx context.Context, userID int64) ([]models.EntryDB, error) {
	const query = `
		SELECT id, user_id, date, goals_rating, progress_rating, happiness_rating,
		       meaning_rating, relationships_rating, engagement_rating
		FROM daily_entries
		WHERE user_id = ?
		ORDER BY date DESC
	`

	entries := make([]models.EntryDB, 0)
	err := r.db.SelectContext(ctx, &entries, query, userID)

	// Log with query in single line
	logger.Log.Infow("entry select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(entries),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return entries, nil
}

// AveragesLast30Days computes the mean of each rating column over the
// user's entries dated within the trailing 30 days. Every column is
// NULL when the window is empty.
func (r *EntryReadRepository) AveragesLast30Days(ctx context.Context, userID int64) (*models.EntryAveragesDB, error) {
	const query = `
		SELECT
			AVG(goals_rating)         AS avg_goals,
			AVG(progress_rating)      AS avg_progress,
			AVG(happiness_rating)     AS avg_happiness,
			AVG(meaning_rating)       AS avg_meaning,
			AVG(relationships_rating) AS avg_relationships,
			AVG(engagement_rating)    AS avg_engagement
		FROM daily_entries
		WHERE user_id = ?
		  AND date >= date('now', '-30 days')
	`

	var averages models.EntryAveragesDB
	err := r.db.GetContext(ctx, &averages, query, userID)

	// Log with query in single line
	logger.Log.Infow("entry averages",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return &averages, nil
}
