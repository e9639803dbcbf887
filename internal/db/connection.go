package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

const (
	maxConns        = 20
	minConns        = 2
	maxConnIdleTime = 30 * time.Second
	maxConnLifetime = 5 * time.Minute
)

// Pool is the process-wide connection pool seen through database/sql.
type Pool struct {
	*sql.DB
	pgx *pgxpool.Pool
}

// Close closes the database/sql handle and the pgxpool behind it, if any.
func (p *Pool) Close() error {
	err := p.DB.Close()
	if p.pgx != nil {
		p.pgx.Close()
	}
	return err
}

// Open builds the pool. The pgx driver runs on a tuned pgxpool; "postgres"
// goes through lib/pq with the same limits.
func Open(driver, dsn string) (*Pool, error) {
	switch driver {
	case "pgx":
		pool, err := Connect(dsn)
		if err != nil {
			return nil, err
		}
		return &Pool{DB: stdlib.OpenDBFromPool(pool), pgx: pool}, nil
	case "postgres":
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(minConns)
		db.SetConnMaxIdleTime(maxConnIdleTime)
		db.SetConnMaxLifetime(maxConnLifetime)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping: %w", err)
		}
		return &Pool{DB: db}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func Connect(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.MaxConnLifetime = maxConnLifetime

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return p, nil
}

// TestConnection runs a trivial query and returns the server clock.
func TestConnection(db *sql.DB) (time.Time, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var now time.Time
	if err := db.QueryRowContext(ctx, "SELECT NOW()").Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("test query: %w", err)
	}
	return now, nil
}
