package repository

import (
	"context"
	"database/sql"
	"errors"

	"skill-intake/internal/database"
	"skill-intake/internal/domain/submission"

	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	// FindByEmailForUpdate locks the matching row until the surrounding
	// transaction ends.
	FindByEmailForUpdate(ctx context.Context, email string) (submission.User, error)
	Create(ctx context.Context, u submission.User) (submission.User, error)
}

type PostgresUserRepository struct {
	db database.Querier
}

func NewPostgresUserRepository(db database.Querier) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) FindByEmailForUpdate(ctx context.Context, email string) (submission.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, username, email, COALESCE(location, '')
		 FROM users
		 WHERE email = $1
		 FOR UPDATE`,
		email,
	)

	var u submission.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Location); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return submission.User{}, ErrUserNotFound
		}
		return submission.User{}, err
	}
	return u, nil
}

// Create inserts u and returns it with its assigned ID. An empty location is
// stored as NULL.
func (r *PostgresUserRepository) Create(ctx context.Context, u submission.User) (submission.User, error) {
	var location *string
	if u.Location != "" {
		location = &u.Location
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, location)
		 VALUES ($1, $2, $3)
		 RETURNING user_id`,
		u.Username, u.Email, location,
	)
	if err := row.Scan(&u.ID); err != nil {
		return submission.User{}, err
	}
	return u, nil
}
