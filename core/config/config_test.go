package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "test-secret")

	cfg, err := Load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, 11, 25, 1, 0, 0, 0, time.UTC), cfg.Reservation.TermStart.UTC())
	assert.Equal(t, time.Date(2024, 11, 25, 1, 0, 0, 0, time.UTC), cfg.Reservation.TermEnd.UTC())
	assert.Equal(t, time.Hour, cfg.Reservation.SlotWidth)
	assert.Equal(t, int64(2), cfg.Reservation.SlotCapacity)
	assert.Equal(t, 3*time.Second, cfg.Reservation.LockTimeout)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "test-secret")
	t.Setenv("APP_RESERVATION_SLOT_CAPACITY", "5")
	t.Setenv("APP_RESERVATION_LOCK_TIMEOUT", "750ms")
	t.Setenv("APP_DATABASE_HOST", "db.internal")

	cfg, err := Load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, int64(5), cfg.Reservation.SlotCapacity)
	assert.Equal(t, 750*time.Millisecond, cfg.Reservation.LockTimeout)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoad_RejectsInvertedTerm(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "test-secret")
	t.Setenv("APP_RESERVATION_TERM_END", "2023-01-01T00:00:00Z")

	_, err := Load(viper.New(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "term_end")
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "")

	_, err := Load(viper.New(), t.TempDir())
	require.Error(t, err)
}
