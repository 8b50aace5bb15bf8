package repository

import (
	"context"

	"skill-intake/internal/database"
	"skill-intake/internal/domain/submission"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

type SubmissionQueryRepository interface {
	ListSubmissions(ctx context.Context, limit, offset int) ([]submission.Submission, error)
}

type PostgresSubmissionQueryRepository struct {
	db database.Querier
}

func NewPostgresSubmissionQueryRepository(db database.Querier) *PostgresSubmissionQueryRepository {
	return &PostgresSubmissionQueryRepository{db: db}
}

// ListSubmissions pages over users by user_id and attaches each user's
// skills in attach order. A user without skills gets an empty list.
func (r *PostgresSubmissionQueryRepository) ListSubmissions(ctx context.Context, limit, offset int) ([]submission.Submission, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`WITH page AS (
			SELECT user_id, username, email, COALESCE(location, '') AS location
			FROM users
			ORDER BY user_id ASC
			LIMIT $1 OFFSET $2
		 )
		 SELECT p.user_id, p.username, p.email, p.location, s.skill_name
		 FROM page p
		 LEFT JOIN user_skills us ON us.user_id = p.user_id
		 LEFT JOIN skills s ON s.skill_id = us.skill_id
		 ORDER BY p.user_id ASC, us.user_skill_id ASC`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]submission.Submission, 0)
	var seen map[string]struct{}
	for rows.Next() {
		var u submission.User
		var skillName *string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Location, &skillName); err != nil {
			return nil, err
		}

		if len(out) == 0 || out[len(out)-1].User.ID != u.ID {
			out = append(out, submission.Submission{User: u, Skills: make([]string, 0)})
			seen = map[string]struct{}{}
		}
		if skillName == nil {
			continue
		}
		if _, ok := seen[*skillName]; ok {
			continue
		}
		seen[*skillName] = struct{}{}
		cur := &out[len(out)-1]
		cur.Skills = append(cur.Skills, *skillName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
