package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"skill-intake/internal/database"
	"skill-intake/internal/domain/skill"

	"github.com/jackc/pgx/v5"
)

type SkillRepository interface {
	GetAllSkills(ctx context.Context) ([]skill.Skill, error)
	// Upsert returns the skill named name, creating it when absent.
	Upsert(ctx context.Context, name string) (skill.Skill, error)
}

type PostgresSkillRepository struct {
	db database.Querier
}

func NewPostgresSkillRepository(db database.Querier) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

func (r *PostgresSkillRepository) GetAllSkills(ctx context.Context) ([]skill.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT skill_id, skill_name FROM skills ORDER BY skill_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.Skill, 0)
	for rows.Next() {
		var s skill.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts name or returns the existing row. DO NOTHING leaves
// existing rows unlocked, so submissions sharing a popular skill do not
// serialize on it; a conflict is resolved with a plain SELECT.
func (r *PostgresSkillRepository) Upsert(ctx context.Context, name string) (skill.Skill, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO skills (skill_name) VALUES ($1)
		 ON CONFLICT (skill_name) DO NOTHING
		 RETURNING skill_id, skill_name`,
		name,
	)

	var s skill.Skill
	err := row.Scan(&s.ID, &s.Name)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, sql.ErrNoRows) {
		return skill.Skill{}, err
	}

	row = r.db.QueryRow(ctx, `SELECT skill_id, skill_name FROM skills WHERE skill_name = $1`, name)
	if err := row.Scan(&s.ID, &s.Name); err != nil {
		return skill.Skill{}, fmt.Errorf("load existing skill: %w", err)
	}
	return s, nil
}
