package seeder

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"skill-intake/internal/database"
	"skill-intake/internal/domain/skill"
	"skill-intake/internal/repository"

	"gopkg.in/yaml.v3"
)

//go:embed skills.yaml
var defaultSkillsYAML []byte

type skillsFile struct {
	Skills []string `yaml:"skills"`
}

// SkillsSeeder upserts a skill taxonomy. Names go through the same
// normalization as submitted skills, so seeding twice is a no-op.
type SkillsSeeder struct {
	// File overrides the embedded taxonomy when set.
	File string
}

func (SkillsSeeder) Name() string { return "skills" }

func (s SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	names, err := s.load()
	if err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "skills", "skill_id", "skill_name"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	repo := repository.NewPostgresSkillRepository(tx)
	for _, name := range names {
		if _, err := repo.Upsert(ctx, name); err != nil {
			return fmt.Errorf("upsert %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s SkillsSeeder) load() ([]string, error) {
	raw := defaultSkillsYAML
	if s.File != "" {
		b, err := os.ReadFile(s.File)
		if err != nil {
			return nil, fmt.Errorf("read skills file: %w", err)
		}
		raw = b
	}
	return parseSkills(raw)
}

func parseSkills(raw []byte) ([]string, error) {
	var f skillsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse skills file: %w", err)
	}

	names := skill.Normalize(f.Skills)
	for _, n := range names {
		if len(n) > skill.MaxNameLength {
			return nil, fmt.Errorf("skill %q exceeds %d characters", n, skill.MaxNameLength)
		}
	}
	return names, nil
}
