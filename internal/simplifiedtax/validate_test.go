package simplifiedtax

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestValidateDecodesRequestJSON(t *testing.T) {
	body := `{
		"is_vat_registered": false,
		"route_auto_property": true,
		"property_transfer": {
			"property_type": "residential",
			"area_m2": 72.5,
			"location_zone": "baku_other",
			"has_proof_3yr_one_home": true
		},
		"turnover": {
			"gross_turnover_12m": "180000.50",
			"vat_exempt_categories": ["medical_services", "medical_services", "other"]
		},
		"avg_quarterly_employees": 4,
		"licensed_activity_codes": ["notary", "Notary", "private-medical"],
		"does_wholesale": true,
		"wholesale_einvoice_ratio": 0.25
	}`

	var raw RawProfile
	require.NoError(t, json.Unmarshal([]byte(body), &raw))

	p, err := Validate(raw)
	require.NoError(t, err)

	assert.True(t, p.AutoRoutes.Property)
	require.NotNil(t, p.Property)
	assert.Equal(t, PropertyResidential, p.Property.Type)
	assert.Equal(t, "72.5", p.Property.AreaM2.String())
	assert.Equal(t, ZoneBakuOther, p.Property.Zone)
	assert.True(t, p.Property.HasProof3yrOneHome)

	require.NotNil(t, p.Turnover)
	assert.Equal(t, "180000.5", p.Turnover.Gross.String())
	assert.True(t, p.Turnover.VATExempt.IsZero())
	assert.Equal(t, []VATExemptCategory{VATExemptMedicalServices, VATExemptOther}, p.Turnover.VATExemptCategories)

	assert.Equal(t, []string{"notary", "private_medical"}, p.LicensedActivityCodes)
	require.NotNil(t, p.Disqualifiers.AvgQuarterlyEmployees)
	assert.Equal(t, 4, *p.Disqualifiers.AvgQuarterlyEmployees)
	assert.True(t, p.Wholesale.Active)
	assert.Equal(t, "0.25", p.Wholesale.EInvoiceRatio.String())
	assert.Nil(t, p.B2B.EInvoiceRatio)
}

func TestValidateCollectsEveryFieldError(t *testing.T) {
	raw := RawProfile{
		RouteAutoProperty: true,
		Turnover: &RawTurnover{
			VATExemptTurnover12m:   d("-1"),
			POSRetailNonRegistered: d("-0.01"),
			VATExemptCategories:    []string{"crypto"},
		},
		FixedAssetsResidualValue: d("-5"),
		AvgQuarterlyEmployees:    intPtr(-1),
		LicensedActivityCodes:    []string{"banking", "space_travel"},
		WholesaleEInvoiceRatio:   d("1.01"),
		B2BEInvoiceRatio:         d("-0.1"),
		LandTransfer:             &RawLandTransfer{LandTaxBase: d("-3"), LocationZone: "mars"},
	}

	_, err := Validate(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	assert.ElementsMatch(t, []string{
		"turnover.gross_turnover_12m",
		"turnover.vat_exempt_turnover_12m",
		"turnover.pos_retail_nonregistered_12m",
		"turnover.vat_exempt_categories",
		"property_transfer",
		"land_transfer.land_tax_base",
		"land_transfer.location_zone",
		"fixed_assets_residual_value",
		"avg_quarterly_employees",
		"licensed_activity_codes",
		"wholesale_einvoice_ratio",
		"b2b_einvoice_ratio",
	}, fieldNames(t, err))
}

func TestValidatePropertyTransfer(t *testing.T) {
	tests := []struct {
		name   string
		prop   RawPropertyTransfer
		fields []string
	}{
		{
			name:   "missing everything",
			prop:   RawPropertyTransfer{},
			fields: []string{"property_transfer.area_m2", "property_transfer.property_type", "property_transfer.location_zone"},
		},
		{
			name:   "unknown enums",
			prop:   RawPropertyTransfer{PropertyType: "castle", AreaM2: d("10"), LocationZone: "moon"},
			fields: []string{"property_transfer.property_type", "property_transfer.location_zone"},
		},
		{
			name:   "negative area",
			prop:   RawPropertyTransfer{PropertyType: "residential", AreaM2: d("-1"), LocationZone: "rural"},
			fields: []string{"property_transfer.area_m2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop := tt.prop
			_, err := Validate(RawProfile{RouteAutoProperty: true, PropertyTransfer: &prop})
			assert.ElementsMatch(t, tt.fields, fieldNames(t, err))
		})
	}

	t.Run("zero area is allowed", func(t *testing.T) {
		_, err := Validate(RawProfile{PropertyTransfer: &RawPropertyTransfer{PropertyType: "non_residential", AreaM2: d("0"), LocationZone: "rural"}})
		assert.NoError(t, err)
	})
}

func TestValidateRatioBounds(t *testing.T) {
	for _, ratio := range []string{"0", "0.3", "1"} {
		t.Run("accepts "+ratio, func(t *testing.T) {
			_, err := Validate(RawProfile{DoesB2BWorksServices: true, B2BEInvoiceRatio: d(ratio)})
			assert.NoError(t, err)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "a", Message: "must be >= 0"},
		{Field: "b", Message: "is required"},
	}}
	assert.Equal(t, "invalid taxpayer profile: a: must be >= 0; b: is required", err.Error())
}
