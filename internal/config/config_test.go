package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.App.StorageDriver)
	assert.Equal(t, 3, cfg.Rental.MaxActivePerReader)
	assert.Equal(t, 30*time.Second, cfg.Rental.StatisticsCacheTTL)
	assert.Equal(t, "*/15 * * * *", cfg.Worker.SweepOverdueCron)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("RENTAL_MAX_ACTIVE_PER_READER", "5")
	t.Setenv("RENTAL_LOCK_TTL", "2s")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.App.StorageDriver)
	assert.Equal(t, 5, cfg.Rental.MaxActivePerReader)
	assert.Equal(t, 2*time.Second, cfg.Rental.LockTTL)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestValidate(t *testing.T) {
	t.Run("unknown storage driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := Load()
		assert.ErrorContains(t, err, "STORAGE_DRIVER")
	})

	t.Run("production requires secrets", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("production with secrets", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "s3cr3t")
		t.Setenv("DB_PASSWORD", "pw")
		_, err := Load()
		assert.NoError(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "rent", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=rent sslmode=disable", d.DSN())
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)

	t.Setenv("DB_PORT", "not-a-port")
	_, err = LoadDatabaseConfig()
	assert.Error(t, err)
}
