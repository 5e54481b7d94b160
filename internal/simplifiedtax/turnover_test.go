package simplifiedtax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func turnover(gross, exempt, retail, services string) TurnoverInput {
	return TurnoverInput{
		Gross:                    decimal.RequireFromString(gross),
		VATExempt:                decimal.RequireFromString(exempt),
		POSRetailNonRegistered:   decimal.RequireFromString(retail),
		POSServicesNonRegistered: decimal.RequireFromString(services),
	}
}

func TestCalculateTurnover(t *testing.T) {
	tests := []struct {
		name       string
		in         TurnoverInput
		taxable    string
		posSum     string
		adjusted   string
		overLimits bool
	}{
		{"gross only", turnover("150000", "0", "0", "0"), "150000", "0", "150000", false},
		{"exempt turnover is excluded", turnover("250000", "60000", "0", "0"), "190000", "0", "190000", false},
		{"POS counted at half", turnover("300000", "0", "100000", "60000"), "300000", "160000", "220000", true},
		{"all four figures", turnover("400000", "50000", "200000", "100000"), "350000", "300000", "200000", false},
		{"negative intermediate kept", turnover("1000", "0", "5000", "0"), "1000", "5000", "-1500", false},
	}

	params := DefaultParameters()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := CalculateTurnover(tt.in, params)

			assert.True(t, calc.VATTaxable.Equal(decimal.RequireFromString(tt.taxable)), "taxable %s", calc.VATTaxable)
			assert.True(t, calc.POSEligible.Equal(decimal.RequireFromString(tt.posSum)), "pos %s", calc.POSEligible)
			assert.True(t, calc.Adjusted.Equal(decimal.RequireFromString(tt.adjusted)), "adjusted %s", calc.Adjusted)
			assert.Equal(t, tt.overLimits, calc.ExceedsThreshold(params))
			assert.False(t, calc.Floored)
		})
	}
}

func TestCalculateTurnoverFloor(t *testing.T) {
	params := DefaultParameters()
	params.FloorAdjustedTurnover = true

	calc := CalculateTurnover(turnover("1000", "3000", "0", "0"), params)
	assert.True(t, calc.Adjusted.IsZero())
	assert.True(t, calc.Floored)
	assert.Equal(t, "-2000", calc.VATTaxable.String(), "only the adjusted figure is floored")
}

// Holding gross fixed, raising any deduction never raises adjusted turnover.
func TestAdjustedTurnoverMonotonicity(t *testing.T) {
	params := DefaultParameters()
	steps := []string{"0", "1", "999.99", "25000", "150000", "700000"}

	bump := []struct {
		name  string
		apply func(in *TurnoverInput, v decimal.Decimal)
	}{
		{"vat_exempt", func(in *TurnoverInput, v decimal.Decimal) { in.VATExempt = v }},
		{"pos_retail", func(in *TurnoverInput, v decimal.Decimal) { in.POSRetailNonRegistered = v }},
		{"pos_services", func(in *TurnoverInput, v decimal.Decimal) { in.POSServicesNonRegistered = v }},
	}

	bases := []TurnoverInput{
		turnover("500000", "0", "0", "0"),
		turnover("500000", "10000", "20000", "30000"),
		turnover("0", "0", "0", "0"),
	}

	for _, b := range bump {
		t.Run(b.name, func(t *testing.T) {
			for _, base := range bases {
				prev := CalculateTurnover(base, params).Adjusted
				for _, step := range steps {
					in := base
					b.apply(&in, decimal.RequireFromString(step).Add(valueOf(base, b.name)))
					got := CalculateTurnover(in, params).Adjusted
					assert.True(t, got.LessThanOrEqual(prev), "%s=%s raised adjusted from %s to %s", b.name, step, prev, got)
					prev = got
				}
			}
		})
	}
}

func valueOf(in TurnoverInput, field string) decimal.Decimal {
	switch field {
	case "vat_exempt":
		return in.VATExempt
	case "pos_retail":
		return in.POSRetailNonRegistered
	default:
		return in.POSServicesNonRegistered
	}
}

func TestPOSCoefficientOverride(t *testing.T) {
	params := DefaultParameters()
	params.POSCoefficient = decimal.RequireFromString("0.4")

	calc := CalculateTurnover(turnover("1000", "0", "60", "40"), params)
	assert.Equal(t, "100", calc.POSEligible.String())
	assert.Equal(t, "940", calc.Adjusted.String(), "60% of POS turnover is deducted")
}
