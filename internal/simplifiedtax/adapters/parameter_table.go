package adapters

import (
	"context"
	"maps"

	"github.com/shopspring/decimal"

	"simtax/internal/simplifiedtax"
	"simtax/internal/simplifiedtax/ports"
)

// AmountTable is the raw content of the fixed-amount and land-rate tables,
// usually loaded from the parameter file.
type AmountTable struct {
	// FixedAmounts maps an automatic route to its fixed tax in AZN.
	FixedAmounts map[simplifiedtax.Route]decimal.Decimal
	// LandRatesPerHectare maps a zone to the land tax per hectare, used when
	// a transfer carries an area but no explicit tax base.
	LandRatesPerHectare map[simplifiedtax.LocationZone]decimal.Decimal
}

// ParameterTable is an in-process adapter that implements ports.AmountSource
// from static tables. A remote registry adapter can replace it without
// touching the evaluation service.
type ParameterTable struct {
	fixed map[simplifiedtax.Route]decimal.Decimal
	land  map[simplifiedtax.LocationZone]decimal.Decimal
}

// NewParameterTable creates a table adapter over a private copy of t.
func NewParameterTable(t AmountTable) ports.AmountSource {
	return &ParameterTable{
		fixed: maps.Clone(t.FixedAmounts),
		land:  maps.Clone(t.LandRatesPerHectare),
	}
}

// FixedAmount looks up the fixed tax configured for route.
func (a *ParameterTable) FixedAmount(ctx context.Context, route simplifiedtax.Route) (decimal.Decimal, bool, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, false, err
	}
	amount, ok := a.fixed[route]
	return amount, ok, nil
}

// LandTaxBase derives the base from the transfer's area and zone rate.
// An explicit base on the transfer always wins and is returned unchanged.
func (a *ParameterTable) LandTaxBase(ctx context.Context, land *simplifiedtax.LandTransfer) (decimal.Decimal, bool, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, false, err
	}
	if land == nil {
		return decimal.Zero, false, nil
	}
	if land.LandTaxBase != nil {
		return *land.LandTaxBase, true, nil
	}
	if land.AreaHectares == nil || land.Zone == "" {
		return decimal.Zero, false, nil
	}
	rate, ok := a.land[land.Zone]
	if !ok {
		return decimal.Zero, false, nil
	}
	return land.AreaHectares.Mul(rate).Round(2), true, nil
}
