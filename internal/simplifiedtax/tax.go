package simplifiedtax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExternalAmounts are values the engine cannot derive itself. The service
// layer resolves them before evaluation; nil means unavailable.
type ExternalAmounts struct {
	LandTaxBase *decimal.Decimal
	FixedAmount *decimal.Decimal
}

// TaxComputation is the output of the tax calculator for one route.
type TaxComputation struct {
	Base       *decimal.Decimal
	Rate       *decimal.Decimal
	Amount     *decimal.Decimal
	Exemptions []string
	Citations  []string
}

// fixedRouteArticles maps fixed-amount routes to their 220 rate articles.
var fixedRouteArticles = map[Route]string{
	RouteAutoTransport:      "220.4",
	RouteAutoBettingLottery: "220.6",
	RouteAutoFixed22010:     "220.10",
}

func (e *Engine) computeTax(sel Selection, p Profile, ext ExternalAmounts, tr *trace) (TaxComputation, error) {
	if sel.Outcome == OutcomeExempt {
		zero := decimal.Zero
		tr.record("tax_calculation", true, "218-1.1.5", "Full property exemption: tax 0")
		return TaxComputation{Base: &zero, Amount: &zero}, nil
	}

	switch sel.Route {
	case RouteGeneral:
		return e.generalTax(sel, tr), nil
	case RouteTradeCatering:
		return e.tradeCateringTax(sel, tr), nil
	case RouteAutoProperty:
		return e.propertyTax(p, tr), nil
	case RouteAutoLand:
		return e.landTax(p, ext, tr), nil
	case RouteAutoTransport, RouteAutoBettingLottery, RouteAutoFixed22010:
		return e.fixedTax(sel.Route, ext, tr), nil
	default:
		return TaxComputation{}, &InvariantError{State: "TAX_DISPATCH", Detail: fmt.Sprintf("no calculator for route %q", sel.Route)}
	}
}

func (e *Engine) generalTax(sel Selection, tr *trace) TaxComputation {
	rate := e.params.GeneralTaxRate
	out := TaxComputation{Rate: &rate, Citations: []string{"220.1"}}
	if sel.Turnover == nil {
		tr.record("general_tax", true, "220.1", "No turnover supplied; tax amount not computed")
		return out
	}

	base := floorZero(sel.Turnover.Adjusted)
	amount := base.Mul(rate).Round(2)
	out.Base, out.Amount = &base, &amount
	tr.record("general_tax", true, "220.1", "Base %s x %s = %s", base, rate, amount)
	return out
}

func (e *Engine) tradeCateringTax(sel Selection, tr *trace) TaxComputation {
	out := TaxComputation{Citations: []string{"220.1-1"}}
	if sel.Turnover == nil {
		tr.record("trade_catering_tax", true, "220.1-1", "No turnover supplied; tax amount not computed")
		return out
	}

	base := floorZero(sel.Turnover.VATTaxable)
	var posBase decimal.Decimal
	switch e.params.TradeSplitMode {
	case SplitFixedShare:
		posBase = base.Mul(e.params.TradePOSShare).Round(2)
	default:
		posBase = decimal.Min(floorZero(sel.Turnover.POSEligible), base)
	}
	generalBase := base.Sub(posBase)

	posTax := posBase.Mul(e.params.TradePOSRate)
	generalTax := generalBase.Mul(e.params.TradeGeneralRate)
	amount := posTax.Add(generalTax).Round(2)
	out.Base, out.Amount = &base, &amount

	// A single rate is reported only when one sub-base carries the whole base.
	switch {
	case posBase.IsZero():
		rate := e.params.TradeGeneralRate
		out.Rate = &rate
	case generalBase.IsZero():
		rate := e.params.TradePOSRate
		out.Rate = &rate
	}

	if posBase.IsPositive() {
		out.Exemptions = append(out.Exemptions, fmt.Sprintf("POS turnover (%s AZN) taxed at %s%% rate (220.1-1)",
			posBase.StringFixed(2), e.params.TradePOSRate.Shift(2)))
	}
	tr.record("trade_catering_tax", true, "220.1-1",
		"POS: %s x %s = %s, Other: %s x %s = %s, Total: %s (split %s)",
		posBase, e.params.TradePOSRate, posTax, generalBase, e.params.TradeGeneralRate, generalTax, amount, e.params.TradeSplitMode)
	return out
}

func (e *Engine) propertyTax(p Profile, tr *trace) TaxComputation {
	prop := p.Property
	if prop == nil {
		return TaxComputation{Citations: []string{"220.8"}}
	}

	out := TaxComputation{Citations: []string{"220.8"}}
	billable := prop.AreaM2
	if prop.Type == PropertyResidential {
		billable = floorZero(prop.AreaM2.Sub(e.params.PropertyExemptArea))
		out.Citations = append(out.Citations, "218-1.1.5.3")
		if billable.LessThan(prop.AreaM2) {
			out.Exemptions = append(out.Exemptions, fmt.Sprintf("%s m² exemption applied (218-1.1.5.3)", e.params.PropertyExemptArea))
			tr.record("property_area_exemption", true, "218-1.1.5.3",
				"Applied %s m² exemption: %s - %s = %s taxable", e.params.PropertyExemptArea, prop.AreaM2, e.params.PropertyExemptArea, billable)
		}
	}

	coef, ok := e.params.ZoneCoefficients[prop.Zone]
	if !ok {
		coef = decimal.NewFromInt(1)
	}
	base := billable.Mul(e.params.PropertyTaxPerM2)
	amount := base.Mul(coef).Round(2)
	out.Base, out.Rate, out.Amount = &base, &coef, &amount

	tr.record("property_tax", true, "220.8", "Area: %s m², Base rate: %s, Zone coef: %s, Tax: %s",
		billable, e.params.PropertyTaxPerM2, coef, amount)
	return out
}

func (e *Engine) landTax(p Profile, ext ExternalAmounts, tr *trace) TaxComputation {
	multiplier := e.params.LandMultiplier
	out := TaxComputation{Rate: &multiplier, Citations: []string{landArticleKey, "206.1-1"}}

	landBase := ext.LandTaxBase
	if landBase == nil && p.Land != nil {
		landBase = p.Land.LandTaxBase
	}
	if landBase == nil {
		tr.record("land_tax", true, "206.1-1", "Land tax base unavailable; tax amount not computed")
		return out
	}

	base := floorZero(*landBase)
	amount := base.Mul(multiplier).Round(2)
	out.Base, out.Amount = &base, &amount
	tr.record("land_tax", true, "220.8", "Land tax %s x %s = %s", base, multiplier, amount)
	return out
}

func (e *Engine) fixedTax(route Route, ext ExternalAmounts, tr *trace) TaxComputation {
	article := fixedRouteArticles[route]
	out := TaxComputation{Citations: []string{article}}
	if ext.FixedAmount == nil {
		tr.record("fixed_amount", true, article, "No fixed amount configured for %s", route)
		return out
	}
	amount := ext.FixedAmount.Round(2)
	out.Amount = &amount
	tr.record("fixed_amount", true, article, "Fixed amount for %s: %s", route, amount)
	return out
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
