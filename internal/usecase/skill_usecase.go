package usecase

import (
	"context"
	"fmt"

	"skill-intake/internal/domain/skill"
	"skill-intake/internal/repository"
)

type SkillUsecase interface {
	ListSkills(ctx context.Context) ([]skill.Skill, error)
}

type Skill struct {
	repo repository.SkillRepository
}

func NewSkillUsecase(repo repository.SkillRepository) *Skill {
	return &Skill{repo: repo}
}

func (u *Skill) ListSkills(ctx context.Context) ([]skill.Skill, error) {
	items, err := u.repo.GetAllSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return items, nil
}
