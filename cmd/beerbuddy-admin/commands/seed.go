package commands

import (
	"context"
	"fmt"

	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/internal/seed"
	"github.com/spf13/cobra"
)

var skipMigrate bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo account and its posts",
	Long: `Create the demo user test@example.com if it does not exist, delete its
posts and insert a fresh batch of 50.

Examples:
  beerbuddy-admin seed                 # Migrate, then seed
  beerbuddy-admin seed --skip-migrate  # Seed an already migrated database`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run migrations before seeding")
}

func runSeed(ctx context.Context) error {
	cfg, log, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrate {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	hasher := auth.NewPasswordHasher(auth.Argon2Params{
		Memory:      cfg.Password.Memory,
		Iterations:  cfg.Password.Iterations,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})

	seeder := seed.NewSeeder(repository.NewUserRepository(db.DB), repository.NewPostRepository(db.DB), hasher, log)
	result, err := seeder.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded user %d (%s): %d posts removed, %d posts created\n",
		result.UserID, seed.DemoEmail, result.PostsDeleted, result.PostsCreated)
	return nil
}
