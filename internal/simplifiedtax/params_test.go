package simplifiedtax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParametersAreValid(t *testing.T) {
	require.NoError(t, DefaultParameters().Validate())
}

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
		fields []string
	}{
		{
			name:   "rate above one",
			mutate: func(p *Parameters) { p.GeneralTaxRate = decimal.RequireFromString("1.01") },
			fields: []string{"GENERAL_TAX_RATE"},
		},
		{
			name: "negative thresholds",
			mutate: func(p *Parameters) {
				p.TurnoverThreshold = decimal.NewFromInt(-1)
				p.EmployeeThreshold = -1
			},
			fields: []string{"TURNOVER_THRESHOLD", "EMPLOYEE_THRESHOLD"},
		},
		{
			name: "zone coefficients",
			mutate: func(p *Parameters) {
				delete(p.ZoneCoefficients, ZoneRural)
				p.ZoneCoefficients[ZoneBakuCenter] = decimal.Zero
			},
			fields: []string{"ZONE_COEFFICIENTS.rural", "ZONE_COEFFICIENTS.baku_center"},
		},
		{
			name: "unknown policies",
			mutate: func(p *Parameters) {
				p.AutoRouteDisqualifiers = "some"
				p.TradeSplitMode = "guess"
			},
			fields: []string{"AUTO_ROUTE_DISQUALIFIERS", "TRADE_SPLIT_MODE"},
		},
		{
			name:   "missing source",
			mutate: func(p *Parameters) { p.SourceURL = "" },
			fields: []string{"SOURCE_URL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			err := p.Validate()
			assert.ElementsMatch(t, tt.fields, fieldNames(t, err))
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), "invalid parameters")
			assert.NotContains(t, err.Error(), "taxpayer profile")
		})
	}
}

func TestDefaultParametersAreIndependent(t *testing.T) {
	a := DefaultParameters()
	a.ZoneCoefficients[ZoneRural] = decimal.NewFromInt(9)
	assert.Equal(t, "1", DefaultParameters().ZoneCoefficients[ZoneRural].String())
}
