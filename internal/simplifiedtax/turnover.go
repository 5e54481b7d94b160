package simplifiedtax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TurnoverCalculation is the derived 218.1.1 / 218.1-1 view of a TurnoverInput.
type TurnoverCalculation struct {
	Gross       decimal.Decimal
	VATExempt   decimal.Decimal
	VATTaxable  decimal.Decimal // gross - vat_exempt
	POSEligible decimal.Decimal // pos_retail + pos_services
	Adjusted    decimal.Decimal // vat_taxable - pos_eligible * (1 - coefficient)
	Floored     bool
}

// CalculateTurnover derives the threshold-relevant adjusted turnover. The
// result may be negative unless params.FloorAdjustedTurnover is set.
func CalculateTurnover(in TurnoverInput, params Parameters) TurnoverCalculation {
	taxable := in.Gross.Sub(in.VATExempt)
	pos := in.POSRetailNonRegistered.Add(in.POSServicesNonRegistered)
	discount := pos.Mul(decimal.NewFromInt(1).Sub(params.POSCoefficient))

	calc := TurnoverCalculation{
		Gross:       in.Gross,
		VATExempt:   in.VATExempt,
		VATTaxable:  taxable,
		POSEligible: pos,
		Adjusted:    taxable.Sub(discount),
	}
	if params.FloorAdjustedTurnover && calc.Adjusted.IsNegative() {
		calc.Adjusted = decimal.Zero
		calc.Floored = true
	}
	return calc
}

// ExceedsThreshold reports whether the adjusted turnover is strictly above the limit.
func (c TurnoverCalculation) ExceedsThreshold(params Parameters) bool {
	return c.Adjusted.GreaterThan(params.TurnoverThreshold)
}

func (c TurnoverCalculation) describe() string {
	return fmt.Sprintf("Gross: %s, VAT-exempt: %s, POS eligible: %s, Adjusted: %s",
		c.Gross, c.VATExempt, c.POSEligible, c.Adjusted)
}
