// Package integration runs the ledger against real PostgreSQL and Redis
// containers started with testcontainers.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/infrastructure/migration"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testDBName     = "comtrack_test"
	testDBUser     = "comtrack"
	testDBPassword = "comtrack"
)

// TestDB is a migrated PostgreSQL database in its own container
type TestDB struct {
	DB     *gorm.DB
	Config config.DatabaseConfig
}

// NewTestDB starts a PostgreSQL container and applies every migration
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            testDBUser,
		Password:        testDBPassword,
		DBName:          testDBName,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
	}

	m, err := migration.Open(cfg.DSN(), findMigrationsPath(t), zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
	require.NoError(t, m.Close())

	db, err := persistence.NewDatabase(&cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &TestDB{DB: db.DB, Config: cfg}
}

// findMigrationsPath walks up from this file to the repository's migrations directory
func findMigrationsPath(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("Could not find migrations directory")
	return ""
}

// Company is one seeded tenant with a supplier, a customer and a part
type Company struct {
	TenantID   uuid.UUID
	SupplierID uuid.UUID
	CustomerID uuid.UUID
	PartID     uuid.UUID
}

// SeedCompany inserts a company and its master data
func (tdb *TestDB) SeedCompany(t *testing.T, name string) Company {
	t.Helper()
	now := time.Now()

	company := models.NewCompany(name)
	require.NoError(t, tdb.DB.Create(company).Error)

	supplier := models.SupplierModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:  company.ID,
		Name:      name + " Supplies",
	}
	customer := models.CustomerModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:  company.ID,
		Name:      name + " Customer",
	}
	part := models.PartModel{
		BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:   company.ID,
		SupplierID: supplier.ID,
		SKU:        "SKU-" + name,
		Name:       "Bearing",
	}
	require.NoError(t, tdb.DB.Create(&supplier).Error)
	require.NoError(t, tdb.DB.Create(&customer).Error)
	require.NoError(t, tdb.DB.Create(&part).Error)

	return Company{
		TenantID:   company.ID,
		SupplierID: supplier.ID,
		CustomerID: customer.ID,
		PartID:     part.ID,
	}
}
