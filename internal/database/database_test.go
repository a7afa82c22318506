package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/srm/internal/config"
	"github.com/BradenHooton/srm/internal/models"
)

func TestMapPostgresError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, models.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), models.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "details_supplier_id_key"}, models.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, models.ErrNotFound},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, models.ErrNotFound},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "email"}, models.ErrBadRequest},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapPostgresError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapPostgresError_UnknownCodeUnchanged(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40001"}

	assert.Same(t, pgErr, MapPostgresError(pgErr))
}

func TestPoolConfig(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:              "db.internal",
		Port:              5433,
		User:              "srm",
		Password:          "secret",
		Name:              "srm",
		SSLMode:           "disable",
		MaxConns:          12,
		MinConns:          2,
		MaxConnLifetime:   5 * time.Minute,
		MaxConnIdleTime:   time.Minute,
		HealthCheckPeriod: 30 * time.Second,
	}

	pc, err := poolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 5*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 30*time.Second, pc.HealthCheckPeriod)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "srm", pc.ConnConfig.RuntimeParams["application_name"])
}
