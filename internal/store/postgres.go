package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock implements it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects a PostgresStore.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, mainly for tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS estimations (
	id           UUID PRIMARY KEY,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	client_ip    TEXT NOT NULL,
	surface      DOUBLE PRECISION NOT NULL,
	rooms        DOUBLE PRECISION NOT NULL,
	year         INTEGER NOT NULL,
	address      TEXT NOT NULL,
	price_m2     DOUBLE PRECISION NOT NULL,
	total_price  DOUBLE PRECISION NOT NULL,
	class        TEXT NOT NULL,
	response     JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_estimations_created_at ON estimations(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LogEstimation(ctx context.Context, log *EstimationLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO estimations
			(id, created_at, client_ip, surface, rooms, year, address, price_m2, total_price, class, response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		log.ID, log.CreatedAt, log.ClientIP, log.Surface, log.Rooms, log.Year,
		log.Address, log.PricePerM2, log.TotalPrice, log.Class, log.Response,
	)
	return eris.Wrap(err, "postgres: insert estimation")
}

func (s *PostgresStore) ListEstimations(ctx context.Context, filter Filter) ([]EstimationLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, created_at, client_ip, surface, rooms, year, address, price_m2, total_price, class, response
		FROM estimations ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query estimations")
	}
	defer rows.Close()

	var out []EstimationLog
	for rows.Next() {
		var e EstimationLog
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.ClientIP, &e.Surface, &e.Rooms,
			&e.Year, &e.Address, &e.PricePerM2, &e.TotalPrice, &e.Class, &e.Response); err != nil {
			return nil, eris.Wrap(err, "postgres: scan estimation")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate estimations")
}
