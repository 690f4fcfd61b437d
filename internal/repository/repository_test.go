package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/beerbuddy/beerbuddy/internal/config"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/internal/repository/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// One container serves the whole package; each case truncates the tables.
var shared struct {
	once      sync.Once
	container *postgres.PostgresContainer
	db        *repository.Database
	err       error
}

func TestMain(m *testing.M) {
	code := m.Run()
	if shared.db != nil {
		_ = shared.db.Close()
	}
	if shared.container != nil {
		_ = shared.container.Terminate(context.Background())
	}
	os.Exit(code)
}

func startPostgres() (*postgres.PostgresContainer, *repository.Database, error) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("beerbuddy_test"),
		postgres.WithUsername("beerbuddy"),
		postgres.WithPassword("beerbuddy"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		return pgContainer, nil, err
	}
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return pgContainer, nil, err
	}

	db, err := repository.NewDatabase(&config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         "beerbuddy",
		Password:     "beerbuddy",
		DBName:       "beerbuddy_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		return pgContainer, nil, err
	}
	if err := db.AutoMigrate(); err != nil {
		return pgContainer, db, err
	}
	return pgContainer, db, nil
}

// testDatabase returns the shared database with every table emptied. Skipped
// under -short or when no container runtime is reachable.
func testDatabase(t *testing.T) *repository.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	shared.once.Do(func() {
		shared.container, shared.db, shared.err = startPostgres()
	})
	require.NoError(t, shared.err)

	require.NoError(t, shared.db.Exec(
		"TRUNCATE users, follows, posts, likes, comments RESTART IDENTITY CASCADE").Error)
	return shared.db
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Stores {
		db := testDatabase(t)
		return storetest.Stores{
			Users:    repository.NewUserRepository(db.DB),
			Posts:    repository.NewPostRepository(db.DB),
			Likes:    repository.NewLikeRepository(db.DB),
			Comments: repository.NewCommentRepository(db.DB),
			Follows:  repository.NewFollowRepository(db.DB),
		}
	})
}

func TestWriteErrorsKeepCause(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	// missing author: a foreign key failure, not a duplicate
	err := repository.NewPostRepository(db.DB).Create(ctx, &models.Post{Title: "t", BeersCount: 1, ImageURL: "x", AuthorID: 999})
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "failed to create post")
}
