package integration

import (
	"context"
	"testing"
	"time"

	"perfume-store/internal/database"
	"perfume-store/internal/model"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool
// with the decimal codec registered, and applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedFees inserts the standard shipping and VAT fee rows.
func (db *TestDB) SeedFees(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO fees (id, name, value, threshold)
		VALUES ($1, $2, $3, $4), ($5, $6, $7, NULL)
		ON CONFLICT (name) DO NOTHING`,
		uuid.New(), model.FeeShipping, decimal.NewFromInt(30000), decimal.NewFromInt(5000000),
		uuid.New(), model.FeeVAT, decimal.NewFromInt(10),
	)
	if err != nil {
		t.Fatalf("failed to seed fees: %v", err)
	}
}

// SeedProduct inserts a published product and returns its ID.
func (db *TestDB) SeedProduct(t *testing.T, name string, price int64, warrantyMonths int) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	id := uuid.New()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO products (id, name, price, stock, published, warranty_months)
		VALUES ($1, $2, $3, 100, TRUE, $4)`,
		id, name, decimal.NewFromInt(price), warrantyMonths,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return id
}

// CountRows returns the row count of a table.
func (db *TestDB) CountRows(t *testing.T, table string) int {
	t.Helper()

	var count int
	if err := db.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	return count
}
