package app

import (
	"context"
	"errors"
	"fmt"

	"skill-intake/internal/config"
	"skill-intake/internal/database"
	dbpostgres "skill-intake/internal/database/postgres"
	"skill-intake/internal/delivery/http/handler"
	"skill-intake/internal/delivery/http/routes"
	"skill-intake/internal/infrastructure/cache"
	"skill-intake/internal/repository"
	"skill-intake/internal/usecase"
	"skill-intake/internal/ws"

	"go.uber.org/zap"
)

// Container owns the long-lived dependencies of the HTTP service.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub

	SubmissionUsecase usecase.SubmissionUsecase
	SkillUsecase      usecase.SkillUsecase
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	redisCache := cache.NewRedis(ctx, cfg.Redis, logger.Named("cache"))
	hub := ws.NewHub(logger.Named("ws"))

	submissions := usecase.NewSubmissionUsecase(
		repository.NewPostgresUnitOfWork(db),
		repository.NewPostgresSubmissionQueryRepository(db),
		usecase.SubmissionOptions{
			Cache:        redisCache,
			CacheTTL:     cfg.Redis.TTL,
			Notifier:     hub,
			DefaultLimit: cfg.App.DefaultPageLimit,
			Logger:       logger.Named("submission"),
		},
	)

	return &Container{
		Config:            cfg,
		Logger:            logger,
		DB:                db,
		Cache:             redisCache,
		Hub:               hub,
		SubmissionUsecase: submissions,
		SkillUsecase:      usecase.NewSkillUsecase(repository.NewPostgresSkillRepository(db)),
	}, nil
}

// Registrars lists every route owner backed by this container.
func (c *Container) Registrars() []routes.RouteRegistrar {
	var cachePinger handler.Pinger
	if c.Config.Redis.Enabled() {
		cachePinger = c.Cache
	}

	return []routes.RouteRegistrar{
		handler.NewHealthHandler(c.DB, cachePinger),
		handler.NewSubmissionHandler(c.SubmissionUsecase),
		handler.NewSkillHandler(c.SkillUsecase),
		ws.NewHandler(c.Hub, c.Config.App.CORSAllowOrigins, c.Logger.Named("ws")),
	}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
