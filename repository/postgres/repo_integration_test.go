//go:build integration

package postgres

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fastygo/storecore/domain"
	infra "github.com/fastygo/storecore/internal/infrastructure/postgres"
)

// setupPostgres starts a Postgres container with the schema applied.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "storecore",
			"POSTGRES_PASSWORD": "storecore",
			"POSTGRES_DB":       "ecommerce_db",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgC.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://storecore:storecore@%s:%s/ecommerce_db?sslmode=disable", host, port.Port())

	_, file, _, _ := runtime.Caller(0)
	migrations := filepath.Join(filepath.Dir(file), "..", "..", "assets", "migrations")
	require.NoError(t, infra.Migrate(dsn, migrations, nil))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRepositories(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	users := NewUserRepository(pool)
	txs := NewTransactionRepository(pool)

	t.Run("create and lookup users", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, &domain.User{UserID: "u-1", Name: "Ada", Email: "ada@example.com", PasswordHash: "h"}))
		assert.ErrorIs(t, users.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h"}), domain.ErrEmailTaken)

		user, err := users.GetByUserID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "h", user.PasswordHash)

		_, err = users.GetByUserID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("backfill userid", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, &domain.User{Name: "Legacy", Email: "legacy@example.com", PasswordHash: "h"}))

		user, err := users.GetByEmail(ctx, "legacy@example.com")
		require.NoError(t, err)
		assert.False(t, user.HasUserID())

		require.NoError(t, users.SetUserID(ctx, "legacy@example.com", "u-2"))
		assert.ErrorIs(t, users.SetUserID(ctx, "legacy@example.com", "u-3"), domain.ErrUserNotFound)

		user, err = users.GetByUserID(ctx, "u-2")
		require.NoError(t, err)
		assert.Equal(t, "legacy@example.com", user.Email)
	})

	t.Run("append and list purchases", func(t *testing.T) {
		first := &domain.Transaction{UserID: "u-1", Products: []domain.ProductID{7, 12}}
		require.NoError(t, txs.Append(ctx, first))
		assert.NotEmpty(t, first.ID)
		require.NoError(t, txs.Append(ctx, &domain.Transaction{UserID: "u-2", Products: []domain.ProductID{3}, Timestamp: first.Timestamp.Add(time.Second)}))

		all, err := txs.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "7,12", all[0].Product())

		mine, err := txs.ByUser(ctx, "u-2")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, []domain.ProductID{3}, mine[0].Products)

		assert.ErrorIs(t, txs.Append(ctx, &domain.Transaction{UserID: "u-1"}), domain.ErrInvalidPayload)
	})
}
