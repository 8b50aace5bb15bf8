package main

import (
	"context"

	"skill-intake/internal/app"
	"skill-intake/internal/database/migration"
	"skill-intake/internal/database/seeder"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, rt appEnv, c *app.Container) error {
				return migration.Runner{Logger: rt.logger.Named("migration")}.Run(ctx, c.DB.SQLDB())
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the skill taxonomy",
		Long:  "Upserts skill names from an embedded list, or from --file, after normalizing them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, rt appEnv, c *app.Container) error {
				r := seeder.Runner{
					Seeders: []seeder.Seeder{seeder.SkillsSeeder{File: file}},
					Logger:  rt.logger.Named("seeder"),
				}
				return r.Run(ctx, c.DB)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a top-level skills list")
	return cmd
}

func withContainer(parent context.Context, fn func(ctx context.Context, rt appEnv, c *app.Container) error) error {
	if parent == nil {
		parent = context.Background()
	}
	rt, err := loadAppEnv()
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	c, err := app.NewContainer(parent, rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(parent, rt, c)
}
