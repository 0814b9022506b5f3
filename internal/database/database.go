// Package database opens the PostgreSQL pool shared by the repositories.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"

	"cryptoinvest/internal/config"
)

const (
	pingTimeout     = 5 * time.Second
	applicationName = "cryptoinvest-api"
)

var sqlOpen = sql.Open

// PoolLimits are the connection pool settings applied to the opened database.
type PoolLimits struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// Limits derives pool settings from c. Non-positive values leave the database/sql default,
// and idle connections never exceed the open limit.
func Limits(c config.DatabaseConfig) PoolLimits {
	l := PoolLimits{
		MaxOpen: max(c.MaxOpenConns, 0),
		MaxIdle: max(c.MaxIdleConns, 0),
	}
	if c.ConnMaxLifetimeSec > 0 {
		l.MaxLifetime = time.Duration(c.ConnMaxLifetimeSec) * time.Second
	}
	if l.MaxOpen > 0 && l.MaxIdle > l.MaxOpen {
		l.MaxIdle = l.MaxOpen
	}
	return l
}

func (l PoolLimits) apply(db *sql.DB) {
	if l.MaxOpen > 0 {
		db.SetMaxOpenConns(l.MaxOpen)
	}
	if l.MaxIdle > 0 {
		db.SetMaxIdleConns(l.MaxIdle)
	}
	if l.MaxLifetime > 0 {
		db.SetConnMaxLifetime(l.MaxLifetime)
	}
}

// DSN builds a postgres:// URL for c, tagging sessions with the API's application_name.
func DSN(c config.DatabaseConfig) (string, error) {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"DB_HOST", c.Host}, {"DB_PORT", c.Port}, {"DB_USER", c.User}, {"DB_NAME", c.Name},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("database config: missing %s", strings.Join(missing, ", "))
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.Name,
		User:   url.User(c.User),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	q := url.Values{}
	q.Set("application_name", applicationName)
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewPostgres opens the pgx stdlib driver wrapped by otelsql, applies the pool limits and pings.
func NewPostgres(ctx context.Context, c config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	dsn, err := DSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("register traced driver: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	limits := Limits(c)
	limits.apply(db)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping database %s: %w", c.Host, err), db.Close())
	}

	if log != nil {
		log.Info("database connected",
			zap.String("event", "db_connected"),
			zap.String("db_host", c.Host),
			zap.String("db_name", c.Name),
			zap.Int("max_open_conns", limits.MaxOpen),
			zap.Int("max_idle_conns", limits.MaxIdle),
			zap.Duration("conn_max_lifetime", limits.MaxLifetime),
		)
	}
	return db, nil
}
