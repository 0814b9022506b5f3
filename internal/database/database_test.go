package database

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"cryptoinvest/internal/config"
	"cryptoinvest/internal/logger"
)

// stubOpen routes sqlOpen to db for the duration of the test and records the DSN it was given.
func stubOpen(t *testing.T, db *sql.DB, err error) *string {
	t.Helper()
	var gotDSN string
	orig := sqlOpen
	sqlOpen = func(_, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return db, err
	}
	t.Cleanup(func() { sqlOpen = orig })
	return &gotDSN
}

func setDBEnv(t *testing.T, env map[string]string) config.DatabaseConfig {
	t.Helper()
	base := map[string]string{
		"DB_HOST":     "pg.internal",
		"DB_PORT":     "6432",
		"DB_USER":     "invest",
		"DB_PASSWORD": "s3cret",
		"DB_NAME":     "cryptoinvest",

		"DB_SSLMODE":               "",
		"DB_MAX_OPEN_CONNS":        "",
		"DB_MAX_IDLE_CONNS":        "",
		"DB_CONN_MAX_LIFETIME_SEC": "",
	}
	for k, v := range env {
		base[k] = v
	}
	for k, v := range base {
		t.Setenv(k, v)
	}
	return config.Load().Database
}

func TestDSN(t *testing.T) {
	t.Run("from environment", func(t *testing.T) {
		c := setDBEnv(t, map[string]string{"DB_PASSWORD": "p@ss/word"})

		dsn, err := DSN(c)
		require.NoError(t, err)

		u, err := url.Parse(dsn)
		require.NoError(t, err)
		assert.Equal(t, "pg.internal:6432", u.Host)
		assert.Equal(t, "/cryptoinvest", u.Path)
		pw, _ := u.User.Password()
		assert.Equal(t, "p@ss/word", pw)
		assert.Equal(t, "disable", u.Query().Get("sslmode"))
		assert.Equal(t, applicationName, u.Query().Get("application_name"))
	})

	t.Run("ipv6 host without password", func(t *testing.T) {
		dsn, err := DSN(config.DatabaseConfig{Host: "::1", Port: "5432", User: "invest", Name: "ci"})
		require.NoError(t, err)
		assert.Equal(t, "postgres://invest@[::1]:5432/ci?application_name=cryptoinvest-api", dsn)
	})

	t.Run("names every missing setting", func(t *testing.T) {
		_, err := DSN(config.DatabaseConfig{Port: "5432", User: "invest"})
		require.Error(t, err)
		assert.EqualError(t, err, "database config: missing DB_HOST, DB_NAME")
	})
}

func TestLimits(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want PoolLimits
	}{
		{
			name: "defaults",
			want: PoolLimits{MaxOpen: 10, MaxIdle: 5, MaxLifetime: 5 * time.Minute},
		},
		{
			name: "idle capped at open",
			env:  map[string]string{"DB_MAX_OPEN_CONNS": "4", "DB_MAX_IDLE_CONNS": "12"},
			want: PoolLimits{MaxOpen: 4, MaxIdle: 4, MaxLifetime: 5 * time.Minute},
		},
		{
			name: "unlimited open keeps idle",
			env:  map[string]string{"DB_MAX_OPEN_CONNS": "0", "DB_MAX_IDLE_CONNS": "8", "DB_CONN_MAX_LIFETIME_SEC": "0"},
			want: PoolLimits{MaxOpen: 0, MaxIdle: 8},
		},
		{
			name: "negative values ignored",
			env:  map[string]string{"DB_MAX_OPEN_CONNS": "-1", "DB_MAX_IDLE_CONNS": "-3", "DB_CONN_MAX_LIFETIME_SEC": "-60"},
			want: PoolLimits{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Limits(setDBEnv(t, tt.env)))
		})
	}
}

func TestNewPostgres(t *testing.T) {
	ctx := context.Background()

	t.Run("applies pool limits from environment", func(t *testing.T) {
		c := setDBEnv(t, map[string]string{"DB_MAX_OPEN_CONNS": "7", "DB_MAX_IDLE_CONNS": "20", "DB_CONN_MAX_LIFETIME_SEC": "90"})
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		dsn := stubOpen(t, db, nil)
		mock.ExpectPing()

		var buf bytes.Buffer
		got, err := NewPostgres(ctx, c, logger.NewWithWriter(&buf, time.UTC, zapcore.InfoLevel))
		require.NoError(t, err)
		assert.Same(t, db, got)
		assert.Equal(t, 7, got.Stats().MaxOpenConnections)
		assert.Contains(t, *dsn, "pg.internal:6432/cryptoinvest")
		assert.Contains(t, buf.String(), `"event":"db_connected"`)
		assert.Contains(t, buf.String(), `"max_idle_conns":7`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open failure", func(t *testing.T) {
		stubOpen(t, nil, errors.New("driver missing"))

		got, err := NewPostgres(ctx, setDBEnv(t, nil), nil)
		assert.ErrorContains(t, err, "open database: driver missing")
		assert.Nil(t, got)
	})

	t.Run("ping failure names the host", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		got, err := NewPostgres(ctx, setDBEnv(t, nil), nil)
		assert.ErrorContains(t, err, "ping database pg.internal: connection refused")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("incomplete config never opens", func(t *testing.T) {
		dsn := stubOpen(t, nil, errors.New("unexpected open"))

		_, err := NewPostgres(ctx, config.DatabaseConfig{Host: "pg.internal"}, nil)
		assert.ErrorContains(t, err, "missing DB_PORT, DB_USER, DB_NAME")
		assert.Empty(t, *dsn)
	})
}
