package simplifiedtax

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// SourceURL is the published Tax Code every legal basis entry links to.
const SourceURL = "https://taxes.gov.az/az/page/vergi-mecellesi"

// AutoRoutePolicy decides which disqualifiers bind taxpayers on automatic routes.
type AutoRoutePolicy string

const (
	// AutoRouteAll applies every disqualifier to automatic routes.
	AutoRouteAll AutoRoutePolicy = "all"
	// AutoRouteUniversal applies only rules marked universal.
	AutoRouteUniversal AutoRoutePolicy = "universal"
	// AutoRouteNone applies no disqualifier to automatic routes.
	AutoRouteNone AutoRoutePolicy = "none"
)

// TradeSplitMode decides how the 220.1-1 base is split between the 8% and 6% sub-bases.
type TradeSplitMode string

const (
	// SplitPOSActual puts the declared POS turnover, capped at the base, in the 6% sub-base.
	SplitPOSActual TradeSplitMode = "pos_actual"
	// SplitFixedShare puts TradePOSShare of the base in the 6% sub-base.
	SplitFixedShare TradeSplitMode = "fixed_share"
)

// Parameters are the statutory constants and policies the engine runs with.
// An Engine keeps its own copy; changing a Parameters value after NewEngine
// has no effect on evaluations.
type Parameters struct {
	TurnoverThreshold       decimal.Decimal
	POSCoefficient          decimal.Decimal
	FixedAssetsThreshold    decimal.Decimal
	EmployeeThreshold       int
	ExceptionRatioThreshold decimal.Decimal
	GeneralTaxRate          decimal.Decimal
	TradeGeneralRate        decimal.Decimal
	TradePOSRate            decimal.Decimal
	PropertyTaxPerM2        decimal.Decimal
	PropertyExemptArea      decimal.Decimal
	ZoneCoefficients        map[LocationZone]decimal.Decimal
	LandMultiplier          decimal.Decimal

	AutoRouteDisqualifiers AutoRoutePolicy
	TradeSplitMode         TradeSplitMode
	TradePOSShare          decimal.Decimal
	FloorAdjustedTurnover  bool

	SourceURL string
}

// DefaultParameters returns the values in force under the current Tax Code.
func DefaultParameters() Parameters {
	return Parameters{
		TurnoverThreshold:       decimal.NewFromInt(200000),
		POSCoefficient:          decimal.RequireFromString("0.5"),
		FixedAssetsThreshold:    decimal.NewFromInt(1000000),
		EmployeeThreshold:       10,
		ExceptionRatioThreshold: decimal.RequireFromString("0.30"),
		GeneralTaxRate:          decimal.RequireFromString("0.02"),
		TradeGeneralRate:        decimal.RequireFromString("0.08"),
		TradePOSRate:            decimal.RequireFromString("0.06"),
		PropertyTaxPerM2:        decimal.NewFromInt(15),
		PropertyExemptArea:      decimal.NewFromInt(30),
		ZoneCoefficients: map[LocationZone]decimal.Decimal{
			ZoneBakuCenter:           decimal.RequireFromString("2.5"),
			ZoneBakuOther:            decimal.RequireFromString("2.0"),
			ZoneSumgaitGanjaLankaran: decimal.RequireFromString("1.5"),
			ZoneOtherCities:          decimal.RequireFromString("1.2"),
			ZoneRural:                decimal.RequireFromString("1.0"),
		},
		LandMultiplier:         decimal.NewFromInt(2),
		AutoRouteDisqualifiers: AutoRouteUniversal,
		TradeSplitMode:         SplitPOSActual,
		TradePOSShare:          decimal.Zero,
		FloorAdjustedTurnover:  false,
		SourceURL:              SourceURL,
	}
}

// Validate checks that every parameter is within its legal range.
func (p Parameters) Validate() error {
	verr := &ValidationError{subject: "invalid parameters"}
	one := decimal.NewFromInt(1)

	nonNegative := map[string]decimal.Decimal{
		"TURNOVER_THRESHOLD":     p.TurnoverThreshold,
		"FIXED_ASSETS_THRESHOLD": p.FixedAssetsThreshold,
		"PROPERTY_TAX_PER_M2":    p.PropertyTaxPerM2,
		"PROPERTY_EXEMPT_AREA":   p.PropertyExemptArea,
		"LAND_MULTIPLIER":        p.LandMultiplier,
	}
	for _, name := range sortedKeys(nonNegative) {
		if nonNegative[name].IsNegative() {
			verr.add(name, "must be >= 0")
		}
	}

	unit := map[string]decimal.Decimal{
		"POS_COEFFICIENT":           p.POSCoefficient,
		"EXCEPTION_RATIO_THRESHOLD": p.ExceptionRatioThreshold,
		"GENERAL_TAX_RATE":          p.GeneralTaxRate,
		"TRADE_GENERAL_RATE":        p.TradeGeneralRate,
		"TRADE_POS_RATE":            p.TradePOSRate,
		"TRADE_POS_SHARE":           p.TradePOSShare,
	}
	for _, name := range sortedKeys(unit) {
		if v := unit[name]; v.IsNegative() || v.GreaterThan(one) {
			verr.add(name, "must be within [0, 1]")
		}
	}

	if p.EmployeeThreshold < 0 {
		verr.add("EMPLOYEE_THRESHOLD", "must be >= 0")
	}
	for _, z := range Zones {
		c, ok := p.ZoneCoefficients[z]
		if !ok {
			verr.add("ZONE_COEFFICIENTS."+string(z), "missing coefficient")
			continue
		}
		if !c.IsPositive() {
			verr.add("ZONE_COEFFICIENTS."+string(z), "must be > 0")
		}
	}
	switch p.AutoRouteDisqualifiers {
	case AutoRouteAll, AutoRouteUniversal, AutoRouteNone:
	default:
		verr.add("AUTO_ROUTE_DISQUALIFIERS", "unknown policy %q", p.AutoRouteDisqualifiers)
	}
	switch p.TradeSplitMode {
	case SplitPOSActual, SplitFixedShare:
	default:
		verr.add("TRADE_SPLIT_MODE", "unknown mode %q", p.TradeSplitMode)
	}
	if p.SourceURL == "" {
		verr.add("SOURCE_URL", "must not be empty")
	}

	return verr.orNil()
}

// clone returns a deep copy so callers cannot mutate an engine's parameters.
func (p Parameters) clone() Parameters {
	p.ZoneCoefficients = maps.Clone(p.ZoneCoefficients)
	return p
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	return slices.Sorted(maps.Keys(m))
}
