package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS estimations (
	id           TEXT PRIMARY KEY,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	client_ip    TEXT NOT NULL,
	surface      REAL NOT NULL,
	rooms        REAL NOT NULL,
	year         INTEGER NOT NULL,
	address      TEXT NOT NULL,
	price_m2     REAL NOT NULL,
	total_price  REAL NOT NULL,
	class        TEXT NOT NULL,
	response     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_estimations_created_at ON estimations(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LogEstimation(ctx context.Context, log *EstimationLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO estimations
			(id, created_at, client_ip, surface, rooms, year, address, price_m2, total_price, class, response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.CreatedAt, log.ClientIP, log.Surface, log.Rooms, log.Year,
		log.Address, log.PricePerM2, log.TotalPrice, log.Class, log.Response,
	)
	return eris.Wrap(err, "sqlite: insert estimation")
}

func (s *SQLiteStore) ListEstimations(ctx context.Context, filter Filter) ([]EstimationLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, client_ip, surface, rooms, year, address, price_m2, total_price, class, response
		FROM estimations ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query estimations")
	}
	defer rows.Close()

	var out []EstimationLog
	for rows.Next() {
		var e EstimationLog
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.ClientIP, &e.Surface, &e.Rooms,
			&e.Year, &e.Address, &e.PricePerM2, &e.TotalPrice, &e.Class, &e.Response); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan estimation")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate estimations")
}
