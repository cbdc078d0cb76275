package config

import (
	"encoding/json"
	"os"

	"rdelorme/pricewatcher/pkg/errors"

	"github.com/shopspring/decimal"
)

// Product is one tracked entity. The list is loaded once per run and
// never mutated by the pipeline.
type Product struct {
	ID               string          `json:"id"`
	URL              string          `json:"url"`
	Name             string          `json:"name"`
	Currency         string          `json:"currency,omitempty"`
	ThresholdPercent decimal.Decimal `json:"threshold_percent,omitempty"`
	PriceSelector    string          `json:"price_selector,omitempty"`
}

// LoadProducts reads and validates the tracked product list. Any
// structural problem (unreadable file, bad JSON, missing fields, negative
// threshold, duplicate ids) is fatal: the run cannot proceed on a
// half-trusted product list.
func LoadProducts(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfiguration("failed to read products file "+path, err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, errors.NewConfiguration("failed to parse products file "+path, err)
	}

	seen := make(map[string]struct{}, len(products))
	for i := range products {
		p := &products[i]
		if p.ID == "" {
			return nil, errors.NewValidation(p.URL, "product id is required")
		}
		if p.URL == "" {
			return nil, errors.NewValidation(p.ID, "product url is required")
		}
		if p.Name == "" {
			return nil, errors.NewValidation(p.ID, "product name is required")
		}
		if p.ThresholdPercent.IsNegative() {
			return nil, errors.NewValidation(p.ID, "threshold_percent must not be negative")
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errors.NewValidation(p.ID, "duplicate product id")
		}
		seen[p.ID] = struct{}{}
	}
	return products, nil
}
