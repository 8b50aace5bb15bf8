package repository

import (
	"context"
	"fmt"

	"skill-intake/internal/database"
)

// TxRepositories are bound to a single transaction.
type TxRepositories struct {
	Users      UserRepository
	Skills     SkillRepository
	UserSkills UserSkillRepository
}

type UnitOfWork interface {
	// Do runs fn in one transaction. The transaction commits when fn returns
	// nil and rolls back otherwise; fn's error is returned unchanged.
	Do(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

type PostgresUnitOfWork struct {
	db database.DB
}

func NewPostgresUnitOfWork(db database.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	repos := TxRepositories{
		Users:      NewPostgresUserRepository(tx),
		Skills:     NewPostgresSkillRepository(tx),
		UserSkills: NewPostgresUserSkillRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
