// Package simplifiedtax decides whether a taxpayer falls under the Azerbaijan
// simplified tax regime, which route governs them, and how much they owe.
//
// Evaluation is a pure function of a validated Profile, caller-supplied
// ExternalAmounts, and the frozen Parameters held by an Engine. Every decision
// is recorded in a trace with the Tax Code article it rests on.
package simplifiedtax

import "github.com/shopspring/decimal"

// Route is the tax route governing a taxpayer.
type Route string

const (
	RouteGeneral            Route = "general"
	RouteTradeCatering      Route = "trade_catering_over_200k"
	RouteAutoTransport      Route = "auto_transport"
	RouteAutoBettingLottery Route = "auto_betting_lottery"
	RouteAutoProperty       Route = "auto_property"
	RouteAutoFixed22010     Route = "auto_fixed_220_10"
	RouteAutoLand           Route = "auto_land"
)

// IsAutomatic reports whether the route is one of the 218.4 categories that
// bypass the turnover threshold.
func (r Route) IsAutomatic() bool {
	switch r {
	case RouteAutoTransport, RouteAutoBettingLottery, RouteAutoProperty, RouteAutoFixed22010, RouteAutoLand:
		return true
	}
	return false
}

// Article returns the 218.4 sub-article that makes an automatic route apply.
func (r Route) Article() string {
	switch r {
	case RouteAutoTransport:
		return "218.4.1"
	case RouteAutoBettingLottery:
		return "218.4.2"
	case RouteAutoProperty:
		return "218.4.3"
	case RouteAutoFixed22010:
		return "218.4.4"
	case RouteAutoLand:
		return "218.4.5"
	case RouteTradeCatering:
		return "218.1.2"
	default:
		return "218.1.1"
	}
}

// PropertyType classifies a transferred property.
type PropertyType string

const (
	PropertyResidential    PropertyType = "residential"
	PropertyNonResidential PropertyType = "non_residential"
)

// LocationZone selects the 220.8 zone coefficient.
type LocationZone string

const (
	ZoneBakuCenter           LocationZone = "baku_center"
	ZoneBakuOther            LocationZone = "baku_other"
	ZoneSumgaitGanjaLankaran LocationZone = "sumgait_ganja_lankaran"
	ZoneOtherCities          LocationZone = "other_cities"
	ZoneRural                LocationZone = "rural"
)

// Zones lists every location zone in coefficient order.
var Zones = []LocationZone{ZoneBakuCenter, ZoneBakuOther, ZoneSumgaitGanjaLankaran, ZoneOtherCities, ZoneRural}

// VATExemptCategory names a Tax Code 164 exemption the exempt turnover falls under.
type VATExemptCategory string

const (
	VATExemptFinancialServices  VATExemptCategory = "financial_services"
	VATExemptTextbookPublishing VATExemptCategory = "textbook_publishing"
	VATExemptMedicalServices    VATExemptCategory = "medical_services"
	VATExemptEducationServices  VATExemptCategory = "education_services"
	VATExemptInsuranceServices  VATExemptCategory = "insurance_services"
	VATExemptOther              VATExemptCategory = "other"
)

var vatExemptCategories = map[VATExemptCategory]struct{}{
	VATExemptFinancialServices:  {},
	VATExemptTextbookPublishing: {},
	VATExemptMedicalServices:    {},
	VATExemptEducationServices:  {},
	VATExemptInsuranceServices:  {},
	VATExemptOther:              {},
}

// AutoRouteFlags are the five independent 218.4 declarations.
type AutoRouteFlags struct {
	Transport      bool
	BettingLottery bool
	Property       bool
	Fixed22010     bool
	Land           bool
}

// autoRoutePriority is the fixed order in which automatic flags are honored.
var autoRoutePriority = []Route{
	RouteAutoTransport,
	RouteAutoBettingLottery,
	RouteAutoProperty,
	RouteAutoFixed22010,
	RouteAutoLand,
}

func (f AutoRouteFlags) isSet(r Route) bool {
	switch r {
	case RouteAutoTransport:
		return f.Transport
	case RouteAutoBettingLottery:
		return f.BettingLottery
	case RouteAutoProperty:
		return f.Property
	case RouteAutoFixed22010:
		return f.Fixed22010
	case RouteAutoLand:
		return f.Land
	}
	return false
}

// Declared returns the automatic routes whose flags are set, in priority order.
func (f AutoRouteFlags) Declared() []Route {
	var routes []Route
	for _, r := range autoRoutePriority {
		if f.isSet(r) {
			routes = append(routes, r)
		}
	}
	return routes
}

// TurnoverInput holds the four 12-month turnover figures. All amounts are >= 0.
type TurnoverInput struct {
	Gross                    decimal.Decimal
	VATExempt                decimal.Decimal
	VATExemptCategories      []VATExemptCategory
	POSRetailNonRegistered   decimal.Decimal
	POSServicesNonRegistered decimal.Decimal
}

// PropertyTransfer describes an own-property sale under 218.4.3.
type PropertyTransfer struct {
	Type                    PropertyType
	AreaM2                  decimal.Decimal
	Zone                    LocationZone
	IsRegistered3yr         bool
	HasProof3yrOneHome      bool
	IsFamilyGiftInheritance bool
}

// LandTransfer describes an own-land sale under 218.4.5. LandTaxBase is the
// 206.1-1 land tax when the caller already knows it; otherwise the area and
// zone let a lookup derive it.
type LandTransfer struct {
	LandTaxBase  *decimal.Decimal
	AreaHectares *decimal.Decimal
	Zone         LocationZone
}

// Disqualifiers are the 218.5 facts about the taxpayer.
type Disqualifiers struct {
	ProducesExciseGoods          bool
	IsCreditOrg                  bool
	IsInsuranceMarketParticipant bool
	IsInvestmentFund             bool
	IsSecuritiesLicensed         bool
	IsPawnshop                   bool
	IsNonStatePensionFund        bool
	HasRentalIncome              bool
	HasRoyaltyIncome             bool
	IsNaturalMonopoly            bool
	FixedAssetsResidualValue     *decimal.Decimal
	IsPublicLegalEntity          bool
	DoesProduction               bool
	AvgQuarterlyEmployees        *int
	SellsGoldJewelryDiamonds     bool
	SellsFurLeather              bool
}

// RatioActivity is a wholesale or B2B declaration with its e-invoice share.
// A nil ratio means the share was not provided.
type RatioActivity struct {
	Active        bool
	EInvoiceRatio *decimal.Decimal
}

// Profile is the canonical, validated taxpayer description. It is built by
// Validate and never modified afterwards.
type Profile struct {
	VATRegistered bool
	AutoRoutes    AutoRouteFlags

	DoesTrade    bool
	DoesCatering bool

	Turnover *TurnoverInput
	Property *PropertyTransfer
	Land     *LandTransfer

	Disqualifiers Disqualifiers

	LicensedActivityCodes       []string
	CompulsoryInsuranceCarveout bool

	Wholesale RatioActivity
	B2B       RatioActivity
}

// AutomaticRoute returns the highest-priority declared automatic route.
func (p Profile) AutomaticRoute() (Route, bool) {
	declared := p.AutoRoutes.Declared()
	if len(declared) == 0 {
		return "", false
	}
	return declared[0], true
}

// TradeOrCatering reports whether the 218.1.2 allowance can apply.
func (p Profile) TradeOrCatering() bool {
	return p.DoesTrade || p.DoesCatering
}
