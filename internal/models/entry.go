package models

import "database/sql"

// EntryDB represents one daily self-assessment record in the database
type EntryDB struct {
	ID                  int64  `json:"id" db:"id"`
	UserID              int64  `json:"user_id" db:"user_id"`
	Date                string `json:"date" db:"date"` // YYYY-MM-DD
	GoalsRating         int    `json:"goals_rating" db:"goals_rating"`
	ProgressRating      int    `json:"progress_rating" db:"progress_rating"`
	HappinessRating     int    `json:"happiness_rating" db:"happiness_rating"`
	MeaningRating       int    `json:"meaning_rating" db:"meaning_rating"`
	RelationshipsRating int    `json:"relationships_rating" db:"relationships_rating"`
	EngagementRating    int    `json:"engagement_rating" db:"engagement_rating"`
}

// EntryAveragesDB holds per-dimension averages as read from the database.
// Every column is NULL when no rows fall inside the window.
type EntryAveragesDB struct {
	Goals         sql.NullFloat64 `db:"avg_goals"`
	Progress      sql.NullFloat64 `db:"avg_progress"`
	Happiness     sql.NullFloat64 `db:"avg_happiness"`
	Meaning       sql.NullFloat64 `db:"avg_meaning"`
	Relationships sql.NullFloat64 `db:"avg_relationships"`
	Engagement    sql.NullFloat64 `db:"avg_engagement"`
}

// RatingAverages is the per-dimension average set returned to clients,
// rounded to 2 decimal places. An empty window yields all zeros.
type RatingAverages struct {
	Goals         float64 `json:"goals"`
	Progress      float64 `json:"progress"`
	Happiness     float64 `json:"happiness"`
	Meaning       float64 `json:"meaning"`
	Relationships float64 `json:"relationships"`
	Engagement    float64 `json:"engagement"`
}
