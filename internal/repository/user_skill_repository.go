package repository

import (
	"context"

	"skill-intake/internal/database"
)

type UserSkillRepository interface {
	// Attach links the user to the skill; an existing link is left alone.
	// It reports whether a new row was inserted.
	Attach(ctx context.Context, userID, skillID int64) (bool, error)
	// SkillNamesByUserID lists the user's skills in attach order.
	SkillNamesByUserID(ctx context.Context, userID int64) ([]string, error)
}

type PostgresUserSkillRepository struct {
	db database.Querier
}

func NewPostgresUserSkillRepository(db database.Querier) *PostgresUserSkillRepository {
	return &PostgresUserSkillRepository{db: db}
}

func (r *PostgresUserSkillRepository) Attach(ctx context.Context, userID, skillID int64) (bool, error) {
	affected, err := r.db.Exec(ctx,
		`INSERT INTO user_skills (user_id, skill_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, skill_id) DO NOTHING`,
		userID, skillID,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresUserSkillRepository) SkillNamesByUserID(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.skill_name
		 FROM user_skills us
		 JOIN skills s ON s.skill_id = us.skill_id
		 WHERE us.user_id = $1
		 ORDER BY us.user_skill_id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
