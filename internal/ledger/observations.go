package ledger

import (
	"encoding/csv"
	"io"
	"os"
	"time"

	"rdelorme/pricewatcher/pkg/errors"

	"github.com/shopspring/decimal"
)

// Observation is one successful price extraction in the multi-source
// flow, keyed by the URL it was seen on. Rows are only ever appended.
type Observation struct {
	Date  time.Time
	Query string
	URL   string
	Price decimal.Decimal
}

// ObservationLog is the append-only store behind the scout flow. MinByURL
// feeds the lowest-price-beaten comparison; implementations must tolerate
// an empty or missing backing store.
type ObservationLog interface {
	Append(obs Observation) error
	MinByURL() (map[string]decimal.Decimal, error)
	Close() error
}

var csvHeader = []string{"date", "query", "url", "price"}

// CSVLog stores observations in a flat CSV file, one row per observation.
type CSVLog struct {
	path string
}

// NewCSVLog creates a CSV-backed observation log at path. The file is
// created lazily on first append.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

// Append writes one observation row, creating the file with a header row
// when it does not exist yet.
func (l *CSVLog) Append(obs Observation) error {
	_, statErr := os.Stat(l.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.NewFormat(l.path, "failed to open history file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(csvHeader); err != nil {
			return errors.NewFormat(l.path, "failed to write history header", err)
		}
	}
	row := []string{
		obs.Date.UTC().Format(time.RFC3339),
		obs.Query,
		obs.URL,
		obs.Price.String(),
	}
	if err := w.Write(row); err != nil {
		return errors.NewFormat(l.path, "failed to append history row", err)
	}
	w.Flush()
	return w.Error()
}

// MinByURL folds every logged observation into the lowest price seen per
// URL. A missing file yields an empty map.
func (l *CSVLog) MinByURL() (map[string]decimal.Decimal, error) {
	mins := make(map[string]decimal.Decimal)

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return mins, nil
		}
		return nil, errors.NewFormat(l.path, "failed to open history file", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewFormat(l.path, "failed to parse history file", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) < 4 {
			continue
		}
		price, err := decimal.NewFromString(row[3])
		if err != nil {
			return nil, errors.NewFormat(l.path, "invalid price in history file", err)
		}
		url := row[2]
		if current, ok := mins[url]; !ok || price.LessThan(current) {
			mins[url] = price
		}
	}
	return mins, nil
}

// Close is a no-op; the file is opened per operation.
func (l *CSVLog) Close() error {
	return nil
}
