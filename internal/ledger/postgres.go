package ledger

import (
	"database/sql"
	"time"

	"rdelorme/pricewatcher/pkg/errors"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const createObservationsTable = `
CREATE TABLE IF NOT EXISTS price_observations (
	id       SERIAL PRIMARY KEY,
	date     TIMESTAMPTZ NOT NULL,
	query    TEXT NOT NULL,
	url      TEXT NOT NULL,
	price    NUMERIC(12, 2) NOT NULL
)`

// PostgresLog stores observations in a price_observations table. It
// implements the same append-only contract as CSVLog for deployments that
// already run Postgres and want trend queries over SQL.
type PostgresLog struct {
	db *sql.DB
}

// NewPostgresLog connects to Postgres and ensures the observations table
// exists.
func NewPostgresLog(dsn string) (*PostgresLog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.NewConfiguration("failed to open postgres connection", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewConfiguration("failed to ping postgres", err)
	}
	if _, err := db.Exec(createObservationsTable); err != nil {
		db.Close()
		return nil, errors.NewConfiguration("failed to create observations table", err)
	}
	return &PostgresLog{db: db}, nil
}

// Append inserts one observation row
func (l *PostgresLog) Append(obs Observation) error {
	_, err := l.db.Exec(
		`INSERT INTO price_observations (date, query, url, price) VALUES ($1, $2, $3, $4)`,
		obs.Date.UTC(), obs.Query, obs.URL, obs.Price.String(),
	)
	if err != nil {
		return errors.NewFormat("price_observations", "failed to insert observation", err)
	}
	return nil
}

// MinByURL returns the lowest logged price per URL
func (l *PostgresLog) MinByURL() (map[string]decimal.Decimal, error) {
	rows, err := l.db.Query(`SELECT url, MIN(price)::text FROM price_observations GROUP BY url`)
	if err != nil {
		return nil, errors.NewFormat("price_observations", "failed to query minimum prices", err)
	}
	defer rows.Close()

	mins := make(map[string]decimal.Decimal)
	for rows.Next() {
		var url, priceStr string
		if err := rows.Scan(&url, &priceStr); err != nil {
			return nil, errors.NewFormat("price_observations", "failed to scan minimum price row", err)
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, errors.NewFormat("price_observations", "invalid price in observations table", err)
		}
		mins[url] = price
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewFormat("price_observations", "failed to read minimum price rows", err)
	}
	return mins, nil
}

// Close closes the database connection
func (l *PostgresLog) Close() error {
	return l.db.Close()
}

// interface guard
var _ ObservationLog = (*PostgresLog)(nil)
var _ ObservationLog = (*CSVLog)(nil)

// RecentByURL returns the last n observations for a URL, newest first,
// for trend queries.
func (l *PostgresLog) RecentByURL(url string, n int) ([]Observation, error) {
	rows, err := l.db.Query(
		`SELECT date, query, url, price::text FROM price_observations WHERE url = $1 ORDER BY date DESC LIMIT $2`,
		url, n,
	)
	if err != nil {
		return nil, errors.NewFormat("price_observations", "failed to query recent observations", err)
	}
	defer rows.Close()

	var observations []Observation
	for rows.Next() {
		var obs Observation
		var date time.Time
		var priceStr string
		if err := rows.Scan(&date, &obs.Query, &obs.URL, &priceStr); err != nil {
			return nil, errors.NewFormat("price_observations", "failed to scan observation row", err)
		}
		obs.Date = date.UTC()
		obs.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, errors.NewFormat("price_observations", "invalid price in observations table", err)
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}
