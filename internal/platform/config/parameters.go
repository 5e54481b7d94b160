package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"simtax/internal/simplifiedtax"
)

// ParameterSet is everything the parameter file and environment can configure.
type ParameterSet struct {
	Parameters          simplifiedtax.Parameters
	FixedAmounts        map[simplifiedtax.Route]decimal.Decimal
	LandRatesPerHectare map[simplifiedtax.LocationZone]decimal.Decimal
}

// yamlDecimal accepts both YAML numbers and quoted strings.
type yamlDecimal struct {
	decimal.Decimal
}

func (d *yamlDecimal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	v, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q", node.Line, node.Value)
	}
	d.Decimal = v
	return nil
}

// parameterFile mirrors the YAML layout. Keys are the constant names.
type parameterFile struct {
	TurnoverThreshold       *yamlDecimal           `yaml:"TURNOVER_THRESHOLD"`
	POSCoefficient          *yamlDecimal           `yaml:"POS_COEFFICIENT"`
	FixedAssetsThreshold    *yamlDecimal           `yaml:"FIXED_ASSETS_THRESHOLD"`
	EmployeeThreshold       *int                   `yaml:"EMPLOYEE_THRESHOLD"`
	ExceptionRatioThreshold *yamlDecimal           `yaml:"EXCEPTION_RATIO_THRESHOLD"`
	GeneralTaxRate          *yamlDecimal           `yaml:"GENERAL_TAX_RATE"`
	TradeGeneralRate        *yamlDecimal           `yaml:"TRADE_GENERAL_RATE"`
	TradePOSRate            *yamlDecimal           `yaml:"TRADE_POS_RATE"`
	PropertyTaxPerM2        *yamlDecimal           `yaml:"PROPERTY_TAX_PER_M2"`
	PropertyExemptArea      *yamlDecimal           `yaml:"PROPERTY_EXEMPT_AREA"`
	ZoneCoefficients        map[string]yamlDecimal `yaml:"ZONE_COEFFICIENTS"`
	LandMultiplier          *yamlDecimal           `yaml:"LAND_MULTIPLIER"`
	AutoRouteDisqualifiers  *string                `yaml:"AUTO_ROUTE_DISQUALIFIERS"`
	TradeSplitMode          *string                `yaml:"TRADE_SPLIT_MODE"`
	TradePOSShare           *yamlDecimal           `yaml:"TRADE_POS_SHARE"`
	FloorAdjustedTurnover   *bool                  `yaml:"FLOOR_ADJUSTED_TURNOVER"`
	SourceURL               *string                `yaml:"SOURCE_URL"`
	FixedAmounts            map[string]yamlDecimal `yaml:"FIXED_AMOUNTS"`
	LandRatesPerHectare     map[string]yamlDecimal `yaml:"LAND_RATES_PER_HECTARE"`
}

var fixedRoutes = []simplifiedtax.Route{
	simplifiedtax.RouteAutoTransport,
	simplifiedtax.RouteAutoBettingLottery,
	simplifiedtax.RouteAutoFixed22010,
}

// LoadParameters starts from the statutory defaults, overlays the YAML file at
// path (skipped when path is empty), then overlays environment variables named
// after the constants. The result is validated before it is returned.
func LoadParameters(path string, lookup LookupFunc) (ParameterSet, error) {
	set := ParameterSet{
		Parameters:          simplifiedtax.DefaultParameters(),
		FixedAmounts:        map[simplifiedtax.Route]decimal.Decimal{},
		LandRatesPerHectare: map[simplifiedtax.LocationZone]decimal.Decimal{},
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return ParameterSet{}, fmt.Errorf("open parameters file: %w", err)
		}
		defer f.Close()
		if err := set.overlayYAML(f); err != nil {
			return ParameterSet{}, fmt.Errorf("parameters file %s: %w", path, err)
		}
	}

	if err := set.overlayEnv(lookup); err != nil {
		return ParameterSet{}, err
	}
	if err := set.validate(); err != nil {
		return ParameterSet{}, err
	}
	return set, nil
}

func (s *ParameterSet) overlayYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var pf parameterFile
	if err := dec.Decode(&pf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	p := &s.Parameters
	setDecimal(&p.TurnoverThreshold, pf.TurnoverThreshold)
	setDecimal(&p.POSCoefficient, pf.POSCoefficient)
	setDecimal(&p.FixedAssetsThreshold, pf.FixedAssetsThreshold)
	setDecimal(&p.ExceptionRatioThreshold, pf.ExceptionRatioThreshold)
	setDecimal(&p.GeneralTaxRate, pf.GeneralTaxRate)
	setDecimal(&p.TradeGeneralRate, pf.TradeGeneralRate)
	setDecimal(&p.TradePOSRate, pf.TradePOSRate)
	setDecimal(&p.PropertyTaxPerM2, pf.PropertyTaxPerM2)
	setDecimal(&p.PropertyExemptArea, pf.PropertyExemptArea)
	setDecimal(&p.LandMultiplier, pf.LandMultiplier)
	setDecimal(&p.TradePOSShare, pf.TradePOSShare)
	if pf.EmployeeThreshold != nil {
		p.EmployeeThreshold = *pf.EmployeeThreshold
	}
	if pf.AutoRouteDisqualifiers != nil {
		p.AutoRouteDisqualifiers = simplifiedtax.AutoRoutePolicy(*pf.AutoRouteDisqualifiers)
	}
	if pf.TradeSplitMode != nil {
		p.TradeSplitMode = simplifiedtax.TradeSplitMode(*pf.TradeSplitMode)
	}
	if pf.FloorAdjustedTurnover != nil {
		p.FloorAdjustedTurnover = *pf.FloorAdjustedTurnover
	}
	if pf.SourceURL != nil {
		p.SourceURL = *pf.SourceURL
	}

	for zone, v := range pf.ZoneCoefficients {
		z, err := parseZone(zone)
		if err != nil {
			return fmt.Errorf("ZONE_COEFFICIENTS: %w", err)
		}
		p.ZoneCoefficients[z] = v.Decimal
	}
	for route, v := range pf.FixedAmounts {
		r, err := parseFixedRoute(route)
		if err != nil {
			return fmt.Errorf("FIXED_AMOUNTS: %w", err)
		}
		s.FixedAmounts[r] = v.Decimal
	}
	for zone, v := range pf.LandRatesPerHectare {
		z, err := parseZone(zone)
		if err != nil {
			return fmt.Errorf("LAND_RATES_PER_HECTARE: %w", err)
		}
		s.LandRatesPerHectare[z] = v.Decimal
	}
	return nil
}

// overlayEnv applies variables named exactly like the constants. Map entries
// use a suffix: ZONE_COEFFICIENT_BAKU_CENTER, FIXED_AMOUNT_AUTO_TRANSPORT,
// LAND_RATE_PER_HECTARE_RURAL.
func (s *ParameterSet) overlayEnv(lookup LookupFunc) error {
	p := &s.Parameters
	decimals := []struct {
		key    string
		target *decimal.Decimal
	}{
		{"TURNOVER_THRESHOLD", &p.TurnoverThreshold},
		{"POS_COEFFICIENT", &p.POSCoefficient},
		{"FIXED_ASSETS_THRESHOLD", &p.FixedAssetsThreshold},
		{"EXCEPTION_RATIO_THRESHOLD", &p.ExceptionRatioThreshold},
		{"GENERAL_TAX_RATE", &p.GeneralTaxRate},
		{"TRADE_GENERAL_RATE", &p.TradeGeneralRate},
		{"TRADE_POS_RATE", &p.TradePOSRate},
		{"PROPERTY_TAX_PER_M2", &p.PropertyTaxPerM2},
		{"PROPERTY_EXEMPT_AREA", &p.PropertyExemptArea},
		{"LAND_MULTIPLIER", &p.LandMultiplier},
		{"TRADE_POS_SHARE", &p.TradePOSShare},
	}
	for _, d := range decimals {
		if err := envDecimal(lookup, d.key, d.target); err != nil {
			return err
		}
	}
	for _, z := range simplifiedtax.Zones {
		coef := p.ZoneCoefficients[z]
		if err := envDecimal(lookup, "ZONE_COEFFICIENT_"+strings.ToUpper(string(z)), &coef); err != nil {
			return err
		}
		p.ZoneCoefficients[z] = coef
	}
	for _, r := range fixedRoutes {
		key := "FIXED_AMOUNT_" + strings.ToUpper(string(r))
		if v, ok := lookup(key); ok && v != "" {
			amount, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("%s: invalid number %q", key, v)
			}
			s.FixedAmounts[r] = amount
		}
	}
	for _, z := range simplifiedtax.Zones {
		key := "LAND_RATE_PER_HECTARE_" + strings.ToUpper(string(z))
		if v, ok := lookup(key); ok && v != "" {
			rate, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("%s: invalid number %q", key, v)
			}
			s.LandRatesPerHectare[z] = rate
		}
	}

	if v, ok := lookup("EMPLOYEE_THRESHOLD"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMPLOYEE_THRESHOLD: invalid integer %q", v)
		}
		p.EmployeeThreshold = n
	}
	if v, ok := lookup("AUTO_ROUTE_DISQUALIFIERS"); ok && v != "" {
		p.AutoRouteDisqualifiers = simplifiedtax.AutoRoutePolicy(strings.ToLower(v))
	}
	if v, ok := lookup("TRADE_SPLIT_MODE"); ok && v != "" {
		p.TradeSplitMode = simplifiedtax.TradeSplitMode(strings.ToLower(v))
	}
	if v, ok := lookup("SOURCE_URL"); ok && v != "" {
		p.SourceURL = v
	}
	floor, err := envBool(lookup, "FLOOR_ADJUSTED_TURNOVER", p.FloorAdjustedTurnover)
	if err != nil {
		return err
	}
	p.FloorAdjustedTurnover = floor
	return nil
}

func (s *ParameterSet) validate() error {
	if err := s.Parameters.Validate(); err != nil {
		return err
	}
	for r, amount := range s.FixedAmounts {
		if amount.IsNegative() {
			return fmt.Errorf("FIXED_AMOUNTS.%s: must be >= 0", r)
		}
	}
	for z, rate := range s.LandRatesPerHectare {
		if rate.IsNegative() {
			return fmt.Errorf("LAND_RATES_PER_HECTARE.%s: must be >= 0", z)
		}
	}
	return nil
}

func setDecimal(target *decimal.Decimal, v *yamlDecimal) {
	if v != nil {
		*target = v.Decimal
	}
}

func envDecimal(lookup LookupFunc, key string, target *decimal.Decimal) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, v)
	}
	*target = d
	return nil
}

func parseZone(s string) (simplifiedtax.LocationZone, error) {
	for _, z := range simplifiedtax.Zones {
		if string(z) == s {
			return z, nil
		}
	}
	return "", fmt.Errorf("unknown zone %q", s)
}

func parseFixedRoute(s string) (simplifiedtax.Route, error) {
	for _, r := range fixedRoutes {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("route %q has no fixed amount", s)
}
