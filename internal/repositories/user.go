package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/reflection-tracker/internal/logger"
	"github.com/sbilibin2017/reflection-tracker/internal/models"
)

// ErrUniqueViolation is returned when an insert hits a UNIQUE constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsername returns the user with the given username, or nil when
// no such user exists.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT id, username, password_hash
		FROM users
		WHERE username = ?
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username)

	// Log with query in single line
	logger.Log.Infow("user select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts a new user row. The username column carries a UNIQUE
// constraint; a duplicate insert returns ErrUniqueViolation.
func (r *UserWriteRepository) Save(ctx context.Context, username, passwordHash string) error {
	const query = `
		INSERT INTO users (username, password_hash)
		VALUES (?, ?)
	`
	args := []any{username, passwordHash}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	// Log with query in single line
	logger.Log.Infow("user insert",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrUniqueViolation
	}

	return err
}
