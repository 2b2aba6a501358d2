package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/pkg/config"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
)

// RateTable resolves the courier cost charged for shipping to a region.
type RateTable interface {
	CourierCost(region enums.Region) (decimal.Decimal, error)
}

type staticRateTable struct {
	rates map[enums.Region]decimal.Decimal
}

// NewStaticRateTable builds a rate table from the configured region map.
// Every known region must carry a parseable, non-negative rate.
func NewStaticRateTable(cfg config.CourierConfig) (RateTable, error) {
	rates := make(map[enums.Region]decimal.Decimal, len(cfg.Rates))
	for key, raw := range cfg.Rates {
		region, err := enums.ParseRegion(key)
		if err != nil {
			return nil, fmt.Errorf("courier rates: %w", err)
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("courier rate for %s: %w", region, err)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("courier rate for %s cannot be negative", region)
		}
		rates[region] = rate
	}
	for _, region := range []enums.Region{enums.RegionLuzon, enums.RegionVisayas, enums.RegionMindanao} {
		if _, ok := rates[region]; !ok {
			return nil, fmt.Errorf("courier rates: missing rate for %s", region)
		}
	}
	return &staticRateTable{rates: rates}, nil
}

func (t *staticRateTable) CourierCost(region enums.Region) (decimal.Decimal, error) {
	rate, ok := t.rates[region]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no courier rate configured for region %q", region)).
			WithDetails(map[string]string{"field": "region"})
	}
	return rate, nil
}
