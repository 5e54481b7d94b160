package simplifiedtax

import (
	"slices"

	"github.com/shopspring/decimal"

	pstrings "simtax/pkg/platform/strings"
)

// RawTurnover is the undecoded turnover block.
type RawTurnover struct {
	GrossTurnover12m         *decimal.Decimal `json:"gross_turnover_12m"`
	VATExemptTurnover12m     *decimal.Decimal `json:"vat_exempt_turnover_12m"`
	VATExemptCategories      []string         `json:"vat_exempt_categories"`
	POSRetailNonRegistered   *decimal.Decimal `json:"pos_retail_nonregistered_12m"`
	POSServicesNonRegistered *decimal.Decimal `json:"pos_services_nonregistered_12m"`
}

// RawPropertyTransfer is the undecoded property_transfer block.
type RawPropertyTransfer struct {
	PropertyType            string           `json:"property_type"`
	AreaM2                  *decimal.Decimal `json:"area_m2"`
	LocationZone            string           `json:"location_zone"`
	IsRegistered3yr         bool             `json:"is_registered_3yr"`
	HasProof3yrOneHome      bool             `json:"has_proof_3yr_one_home"`
	IsFamilyGiftInheritance bool             `json:"is_family_gift_inheritance"`
}

// RawLandTransfer is the undecoded land_transfer block.
type RawLandTransfer struct {
	LandTaxBase  *decimal.Decimal `json:"land_tax_base"`
	AreaHectares *decimal.Decimal `json:"area_hectares"`
	LocationZone string           `json:"location_zone"`
}

// RawProfile is the request shape accepted at the boundary. Every optional
// field is nullable; Validate turns it into a Profile.
type RawProfile struct {
	IsVATRegistered bool `json:"is_vat_registered"`

	RouteAutoTransport      bool `json:"route_auto_transport"`
	RouteAutoBettingLottery bool `json:"route_auto_betting_lottery"`
	RouteAutoProperty       bool `json:"route_auto_property"`
	RouteAutoFixed22010     bool `json:"route_auto_fixed_220_10"`
	RouteAutoLand           bool `json:"route_auto_land"`

	PropertyTransfer *RawPropertyTransfer `json:"property_transfer"`
	LandTransfer     *RawLandTransfer     `json:"land_transfer"`

	DoesTrade    bool `json:"does_trade"`
	DoesCatering bool `json:"does_catering"`

	Turnover *RawTurnover `json:"turnover"`

	ProducesExciseGoods          bool             `json:"produces_excise_goods"`
	IsCreditOrg                  bool             `json:"is_credit_org"`
	IsInsuranceMarketParticipant bool             `json:"is_insurance_market_participant"`
	IsInvestmentFund             bool             `json:"is_investment_fund"`
	IsSecuritiesLicensed         bool             `json:"is_securities_licensed"`
	IsPawnshop                   bool             `json:"is_pawnshop"`
	IsNonStatePensionFund        bool             `json:"is_non_state_pension_fund"`
	HasRentalIncome              bool             `json:"has_rental_income"`
	HasRoyaltyIncome             bool             `json:"has_royalty_income"`
	IsNaturalMonopoly            bool             `json:"is_natural_monopoly"`
	FixedAssetsResidualValue     *decimal.Decimal `json:"fixed_assets_residual_value"`
	IsPublicLegalEntity          bool             `json:"is_public_legal_entity"`
	DoesProduction               bool             `json:"does_production"`
	AvgQuarterlyEmployees        *int             `json:"avg_quarterly_employees"`
	SellsGoldJewelryDiamonds     bool             `json:"sells_gold_jewelry_diamonds"`
	SellsFurLeather              bool             `json:"sells_fur_leather"`

	LicensedActivityCodes          []string `json:"licensed_activity_codes"`
	HasCompulsoryInsuranceCarveout bool     `json:"has_compulsory_insurance_carveout"`

	DoesWholesale          bool             `json:"does_wholesale"`
	WholesaleEInvoiceRatio *decimal.Decimal `json:"wholesale_einvoice_ratio"`
	DoesB2BWorksServices   bool             `json:"does_b2b_works_services"`
	B2BEInvoiceRatio       *decimal.Decimal `json:"b2b_einvoice_ratio"`
}

// Validate normalizes raw into a Profile. Every offending field is reported
// in the returned *ValidationError, not just the first.
func Validate(raw RawProfile) (Profile, error) {
	verr := &ValidationError{}

	p := Profile{
		VATRegistered: raw.IsVATRegistered,
		AutoRoutes: AutoRouteFlags{
			Transport:      raw.RouteAutoTransport,
			BettingLottery: raw.RouteAutoBettingLottery,
			Property:       raw.RouteAutoProperty,
			Fixed22010:     raw.RouteAutoFixed22010,
			Land:           raw.RouteAutoLand,
		},
		DoesTrade:    raw.DoesTrade,
		DoesCatering: raw.DoesCatering,
		Disqualifiers: Disqualifiers{
			ProducesExciseGoods:          raw.ProducesExciseGoods,
			IsCreditOrg:                  raw.IsCreditOrg,
			IsInsuranceMarketParticipant: raw.IsInsuranceMarketParticipant,
			IsInvestmentFund:             raw.IsInvestmentFund,
			IsSecuritiesLicensed:         raw.IsSecuritiesLicensed,
			IsPawnshop:                   raw.IsPawnshop,
			IsNonStatePensionFund:        raw.IsNonStatePensionFund,
			HasRentalIncome:              raw.HasRentalIncome,
			HasRoyaltyIncome:             raw.HasRoyaltyIncome,
			IsNaturalMonopoly:            raw.IsNaturalMonopoly,
			IsPublicLegalEntity:          raw.IsPublicLegalEntity,
			DoesProduction:               raw.DoesProduction,
			SellsGoldJewelryDiamonds:     raw.SellsGoldJewelryDiamonds,
			SellsFurLeather:              raw.SellsFurLeather,
		},
		CompulsoryInsuranceCarveout: raw.HasCompulsoryInsuranceCarveout,
	}

	if raw.Turnover != nil {
		p.Turnover = validateTurnover(raw.Turnover, verr)
	}

	if raw.PropertyTransfer != nil {
		p.Property = validateProperty(raw.PropertyTransfer, verr)
	} else if raw.RouteAutoProperty {
		verr.add("property_transfer", "is required when route_auto_property is set")
	}

	if raw.LandTransfer != nil {
		p.Land = validateLand(raw.LandTransfer, verr)
	}

	if v := raw.FixedAssetsResidualValue; v != nil {
		if v.IsNegative() {
			verr.add("fixed_assets_residual_value", "must be >= 0")
		}
		p.Disqualifiers.FixedAssetsResidualValue = copyDecimal(v)
	}
	if n := raw.AvgQuarterlyEmployees; n != nil {
		if *n < 0 {
			verr.add("avg_quarterly_employees", "must be >= 0")
		}
		employees := *n
		p.Disqualifiers.AvgQuarterlyEmployees = &employees
	}

	codes := pstrings.NormalizeCodes(raw.LicensedActivityCodes)
	for _, code := range codes {
		if _, ok := LookupLicensedActivity(code); !ok {
			verr.add("licensed_activity_codes", "unknown licensed activity code %q", code)
		}
	}
	p.LicensedActivityCodes = codes

	p.Wholesale = validateRatioActivity("wholesale_einvoice_ratio", raw.DoesWholesale, raw.WholesaleEInvoiceRatio, verr)
	p.B2B = validateRatioActivity("b2b_einvoice_ratio", raw.DoesB2BWorksServices, raw.B2BEInvoiceRatio, verr)

	if err := verr.orNil(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func validateTurnover(raw *RawTurnover, verr *ValidationError) *TurnoverInput {
	t := &TurnoverInput{
		Gross:                    amount("turnover.gross_turnover_12m", raw.GrossTurnover12m, true, verr),
		VATExempt:                amount("turnover.vat_exempt_turnover_12m", raw.VATExemptTurnover12m, false, verr),
		POSRetailNonRegistered:   amount("turnover.pos_retail_nonregistered_12m", raw.POSRetailNonRegistered, false, verr),
		POSServicesNonRegistered: amount("turnover.pos_services_nonregistered_12m", raw.POSServicesNonRegistered, false, verr),
	}

	for _, c := range pstrings.NormalizeCodes(raw.VATExemptCategories) {
		category := VATExemptCategory(c)
		if _, ok := vatExemptCategories[category]; !ok {
			verr.add("turnover.vat_exempt_categories", "unknown category %q", c)
			continue
		}
		t.VATExemptCategories = append(t.VATExemptCategories, category)
	}
	return t
}

func validateProperty(raw *RawPropertyTransfer, verr *ValidationError) *PropertyTransfer {
	prop := &PropertyTransfer{
		Type:                    PropertyType(raw.PropertyType),
		AreaM2:                  amount("property_transfer.area_m2", raw.AreaM2, true, verr),
		Zone:                    LocationZone(raw.LocationZone),
		IsRegistered3yr:         raw.IsRegistered3yr,
		HasProof3yrOneHome:      raw.HasProof3yrOneHome,
		IsFamilyGiftInheritance: raw.IsFamilyGiftInheritance,
	}

	switch prop.Type {
	case PropertyResidential, PropertyNonResidential:
	case "":
		verr.add("property_transfer.property_type", "is required")
	default:
		verr.add("property_transfer.property_type", "unknown property type %q", raw.PropertyType)
	}
	if raw.LocationZone == "" {
		verr.add("property_transfer.location_zone", "is required")
	} else if !validZone(prop.Zone) {
		verr.add("property_transfer.location_zone", "unknown location zone %q", raw.LocationZone)
	}
	return prop
}

func validateLand(raw *RawLandTransfer, verr *ValidationError) *LandTransfer {
	land := &LandTransfer{Zone: LocationZone(raw.LocationZone)}
	if raw.LandTaxBase != nil {
		v := amount("land_transfer.land_tax_base", raw.LandTaxBase, false, verr)
		land.LandTaxBase = &v
	}
	if raw.AreaHectares != nil {
		v := amount("land_transfer.area_hectares", raw.AreaHectares, false, verr)
		land.AreaHectares = &v
	}
	if raw.LocationZone != "" && !validZone(land.Zone) {
		verr.add("land_transfer.location_zone", "unknown location zone %q", raw.LocationZone)
	}
	return land
}

func validateRatioActivity(field string, active bool, ratio *decimal.Decimal, verr *ValidationError) RatioActivity {
	a := RatioActivity{Active: active}
	if ratio == nil {
		return a
	}
	if ratio.IsNegative() || ratio.GreaterThan(decimal.NewFromInt(1)) {
		verr.add(field, "must be within [0, 1]")
	}
	a.EInvoiceRatio = copyDecimal(ratio)
	return a
}

// amount reads a non-negative monetary field. Missing optional amounts are zero.
func amount(field string, v *decimal.Decimal, required bool, verr *ValidationError) decimal.Decimal {
	if v == nil {
		if required {
			verr.add(field, "is required")
		}
		return decimal.Zero
	}
	if v.IsNegative() {
		verr.add(field, "must be >= 0")
	}
	return *v
}

func validZone(z LocationZone) bool {
	return slices.Contains(Zones, z)
}

func copyDecimal(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
