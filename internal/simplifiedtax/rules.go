package simplifiedtax

import (
	"fmt"
	"strings"
)

// RuleKind separates disqualifiers from the exceptions that lift them.
type RuleKind string

const (
	KindDisqualifying RuleKind = "disqualifying"
	KindException     RuleKind = "exception"
)

// finding is a rule predicate's verdict. For a disqualifying rule triggered
// means the disqualifying fact is present; for an exception rule it means the
// exception holds.
type finding struct {
	triggered  bool
	details    string
	reasonCode string
	reason     string
}

// Rule is one entry of the 218.5 / 218.6 registry.
type Rule struct {
	ID      string
	Article string
	Kind    RuleKind
	Message string

	// ReasonCode is surfaced when this disqualifier decides the result.
	ReasonCode string
	// Citations are the article keys cited when this rule fails.
	Citations []string
	// Universal rules bind automatic routes under the universal policy.
	Universal bool
	// Suppresses names the disqualifier an exception rule lifts.
	Suppresses string
	// Exemption is recorded in exemptions_applied when an exception fires.
	Exemption string

	check func(Profile, Parameters) finding
}

// RuleSet is the fixed, ordered rule registry.
type RuleSet struct {
	rules []Rule
}

// Rules returns the registry in evaluation order.
func (rs RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// RuleFailure is the first disqualifier that decided ineligibility.
type RuleFailure struct {
	RuleID            string
	ReasonCode        string
	ReasonDescription string
	Citations         []string
}

// RuleOutcome summarizes a full pass over the registry.
type RuleOutcome struct {
	Eligible   bool
	Failure    *RuleFailure
	Exemptions []string
	// Citations are articles of exceptions that fired in the taxpayer's favor.
	Citations []string
}

// evaluate runs every rule. When automatic is true only the rules selected by
// the auto-route policy bind; the rest are traced as advisory.
func (rs RuleSet) evaluate(p Profile, params Parameters, automatic bool, tr *trace) RuleOutcome {
	findings := make([]finding, len(rs.rules))
	for i, r := range rs.rules {
		findings[i] = r.check(p, params)
	}

	suppressedBy := make(map[string]int)
	for i, r := range rs.rules {
		if r.Kind == KindException && findings[i].triggered {
			suppressedBy[r.Suppresses] = i
		}
	}
	triggered := make(map[string]bool)
	bindingByID := make(map[string]bool)
	for i, r := range rs.rules {
		if r.Kind == KindDisqualifying {
			triggered[r.ID] = findings[i].triggered
			bindingByID[r.ID] = rs.binding(r, params, automatic)
		}
	}

	out := RuleOutcome{Eligible: true}
	for i, r := range rs.rules {
		f := findings[i]
		switch r.Kind {
		case KindDisqualifying:
			if !f.triggered {
				tr.record(r.ID, true, r.Article, "%s", f.details)
				continue
			}
			if ex, ok := suppressedBy[r.ID]; ok {
				tr.record(r.ID, true, r.Article, "%s; lifted by %s", f.details, rs.rules[ex].Article)
				continue
			}
			if !bindingByID[r.ID] {
				tr.record(r.ID, true, r.Article, "%s (advisory: not applied on automatic routes)", f.details)
				continue
			}
			tr.record(r.ID, false, r.Article, "%s", f.details)
			if out.Failure == nil {
				out.Failure = r.failure(f)
			}
			out.Eligible = false

		case KindException:
			// An exception matters only when its disqualifier fired.
			if !triggered[r.Suppresses] {
				tr.record(r.ID, true, r.Article, "Not needed: %s not triggered", r.Suppresses)
				continue
			}
			if !bindingByID[r.Suppresses] {
				tr.record(r.ID, true, r.Article, "%s (advisory: not applied on automatic routes)", f.details)
				continue
			}
			if !f.triggered {
				tr.record(r.ID, false, r.Article, "%s", f.details)
				continue
			}
			tr.record(r.ID, true, r.Article, "%s", f.details)
			out.Exemptions = append(out.Exemptions, r.Exemption)
			out.Citations = append(out.Citations, r.Article)
		}
	}
	return out
}

func (rs RuleSet) binding(r Rule, params Parameters, automatic bool) bool {
	if !automatic {
		return true
	}
	switch params.AutoRouteDisqualifiers {
	case AutoRouteAll:
		return true
	case AutoRouteUniversal:
		return r.Universal
	default:
		return false
	}
}

func (r Rule) failure(f finding) *RuleFailure {
	code := r.ReasonCode
	if f.reasonCode != "" {
		code = f.reasonCode
	}
	reason := r.Message
	if f.reason != "" {
		reason = f.reason
	}
	return &RuleFailure{
		RuleID:            r.ID,
		ReasonCode:        code,
		ReasonDescription: fmt.Sprintf("%s (%s)", reason, strings.Join(r.Citations, ", ")),
		Citations:         r.Citations,
	}
}

// DefaultRuleSet builds the registry in statutory order.
func DefaultRuleSet() RuleSet {
	return RuleSet{rules: []Rule{
		{
			ID: "excise_goods", Article: "218.5.1", Kind: KindDisqualifying,
			Message:    "Excise or mandatory-label goods producers are not eligible",
			ReasonCode: "EXCISE_PRODUCER", Citations: []string{"218.5.1"},
			check: flag(func(p Profile) bool { return p.Disqualifiers.ProducesExciseGoods },
				"Produces excise or mandatory-label goods", "Does not produce excise goods"),
		},
		{
			ID: "financial_sector", Article: "218.5.2", Kind: KindDisqualifying, Universal: true,
			Message:    "Financial sector entities are not eligible",
			ReasonCode: "FINANCIAL_SECTOR", Citations: []string{"218.5.2"},
			check:      checkFinancialSector,
		},
		{
			ID: "pension_fund", Article: "218.5.3", Kind: KindDisqualifying,
			Message:    "Non-state pension funds are not eligible",
			ReasonCode: "PENSION_FUND", Citations: []string{"218.5.3"},
			check: flag(func(p Profile) bool { return p.Disqualifiers.IsNonStatePensionFund },
				"Is a non-state pension fund", "Not a pension fund"),
		},
		{
			ID: "rental_royalty", Article: "218.5.4", Kind: KindDisqualifying,
			Message:    "Taxpayers with rental or royalty income are not eligible",
			ReasonCode: "RENTAL_ROYALTY", Citations: []string{"218.5.4"},
			check:      checkRentalRoyalty,
		},
		{
			ID: "natural_monopoly", Article: "218.5.5", Kind: KindDisqualifying,
			Message:    "Natural monopolies are not eligible",
			ReasonCode: "NATURAL_MONOPOLY", Citations: []string{"218.5.5"},
			check: flag(func(p Profile) bool { return p.Disqualifiers.IsNaturalMonopoly },
				"Is a designated natural monopoly", "Not a natural monopoly"),
		},
		{
			ID: "fixed_assets", Article: "218.5.6", Kind: KindDisqualifying,
			Message:    "Fixed assets residual value exceeds the threshold",
			ReasonCode: "FIXED_ASSETS_EXCEEDED", Citations: []string{"218.5.6"},
			check:      checkFixedAssets,
		},
		{
			ID: "public_entity", Article: "218.5.7", Kind: KindDisqualifying,
			Message:    "Public legal entities are not eligible",
			ReasonCode: "PUBLIC_ENTITY", Citations: []string{"218.5.7"},
			check: flag(func(p Profile) bool { return p.Disqualifiers.IsPublicLegalEntity },
				"Is a public legal entity", "Not a public entity"),
		},
		{
			ID: "production_employees", Article: "218.5.8", Kind: KindDisqualifying,
			Message:    "Production activity with too many average quarterly employees is not eligible",
			ReasonCode: "PRODUCTION_EMPLOYEES", Citations: []string{"218.5.8"},
			check:      checkProductionEmployees,
		},
		{
			ID: "wholesale", Article: "218.5.9", Kind: KindDisqualifying,
			Message:    "Wholesale trade activity without 30% exception verification",
			ReasonCode: "WHOLESALE", Citations: []string{"218.5.9", "218.6.1"},
			check: ratioDisqualifier(func(p Profile) RatioActivity { return p.Wholesale },
				"Wholesale", "No wholesale trade", "WHOLESALE_EXCEEDED",
				"Wholesale e-invoiced operations exceed %s%% of quarterly trade operations"),
		},
		{
			ID: "wholesale_exception", Article: "218.6.1", Kind: KindException,
			Message:    "Wholesale e-invoiced share within the exception limit",
			Suppresses: "wholesale",
			Exemption:  "Wholesale e-invoice exception (218.6.1)",
			check:      ratioException(func(p Profile) RatioActivity { return p.Wholesale }, "Wholesale"),
		},
		{
			ID: "b2b_works_services", Article: "218.5.10", Kind: KindDisqualifying,
			Message:    "B2B works/services activity without 30% exception verification",
			ReasonCode: "B2B_WORKS_SERVICES", Citations: []string{"218.5.10", "218.6.2"},
			check: ratioDisqualifier(func(p Profile) RatioActivity { return p.B2B },
				"B2B", "No B2B works/services", "B2B_EXCEEDED",
				"B2B e-invoiced operations exceed %s%% of quarterly works/services operations"),
		},
		{
			ID: "b2b_exception", Article: "218.6.2", Kind: KindException,
			Message:    "B2B e-invoiced share within the exception limit",
			Suppresses: "b2b_works_services",
			Exemption:  "B2B e-invoice exception (218.6.2)",
			check:      ratioException(func(p Profile) RatioActivity { return p.B2B }, "B2B"),
		},
		{
			ID: "precious_goods", Article: "218.5.11", Kind: KindDisqualifying,
			Message:    "Gold, jewelry, and diamond sellers are not eligible",
			ReasonCode: "PRECIOUS_GOODS", Citations: []string{"218.5.11"},
			check: flag(func(p Profile) bool { return p.Disqualifiers.SellsGoldJewelryDiamonds },
				"Sells gold, jewelry, or diamonds", "No precious goods sales"),
		},
		{
			ID: "fur_leather", Article: "218.5.12", Kind: KindDisqualifying,
			Message:    "Fur and leather product sellers are not eligible",
			ReasonCode: "FUR_LEATHER", Citations: []string{"218.5.12"},
			check: flag(func(p Profile) bool { return p.Disqualifiers.SellsFurLeather },
				"Sells fur or leather products", "No fur/leather sales"),
		},
		{
			ID: "licensed_activities", Article: "218.5.13", Kind: KindDisqualifying,
			Message:    "Licensed activities are not eligible without compulsory insurance carve-out",
			ReasonCode: "LICENSED_ACTIVITY", Citations: []string{"218.5.13"},
			check:      checkLicensedActivities,
		},
		{
			ID: "compulsory_insurance_carveout", Article: "218.5.13", Kind: KindException,
			Message:    "Services rendered only under compulsory insurance contracts",
			Suppresses: "licensed_activities",
			Exemption:  "Compulsory insurance carve-out (218.5.13)",
			check:      checkCarveout,
		},
	}}
}

func flag(fact func(Profile) bool, present, absent string) func(Profile, Parameters) finding {
	return func(p Profile, _ Parameters) finding {
		if fact(p) {
			return finding{triggered: true, details: present}
		}
		return finding{details: absent}
	}
}

func checkFinancialSector(p Profile, _ Parameters) finding {
	d := p.Disqualifiers
	kinds := []struct {
		set  bool
		desc string
	}{
		{d.IsCreditOrg, "credit organization"},
		{d.IsInsuranceMarketParticipant, "insurance market professional participant"},
		{d.IsInvestmentFund, "investment fund or manager"},
		{d.IsSecuritiesLicensed, "securities market licensed person"},
		{d.IsPawnshop, "pawnshop"},
	}
	var found []string
	for _, k := range kinds {
		if k.set {
			found = append(found, k.desc)
		}
	}
	if len(found) == 0 {
		return finding{details: "Not in financial sector"}
	}
	list := strings.Join(found, ", ")
	return finding{
		triggered: true,
		details:   "Is a " + list,
		reason:    fmt.Sprintf("Financial sector entities (%s) are not eligible", list),
	}
}

func checkRentalRoyalty(p Profile, _ Parameters) finding {
	var kinds []string
	if p.Disqualifiers.HasRentalIncome {
		kinds = append(kinds, "rental")
	}
	if p.Disqualifiers.HasRoyaltyIncome {
		kinds = append(kinds, "royalty")
	}
	if len(kinds) == 0 {
		return finding{details: "No rental/royalty income"}
	}
	income := strings.Join(kinds, " and ")
	return finding{
		triggered: true,
		details:   "Has " + income + " income",
		reason:    fmt.Sprintf("Taxpayers with %s income are not eligible", income),
	}
}

func checkFixedAssets(p Profile, params Parameters) finding {
	v := p.Disqualifiers.FixedAssetsResidualValue
	if v == nil {
		return finding{details: "Fixed assets value not declared"}
	}
	if v.GreaterThan(params.FixedAssetsThreshold) {
		return finding{
			triggered: true,
			details:   fmt.Sprintf("Fixed assets %s > %s", v, params.FixedAssetsThreshold),
			reason:    fmt.Sprintf("Fixed assets residual value exceeds %s AZN threshold", params.FixedAssetsThreshold),
		}
	}
	return finding{details: fmt.Sprintf("Fixed assets %s <= %s", v, params.FixedAssetsThreshold)}
}

func checkProductionEmployees(p Profile, params Parameters) finding {
	d := p.Disqualifiers
	if !d.DoesProduction {
		return finding{details: "No production activity"}
	}
	if d.AvgQuarterlyEmployees == nil || *d.AvgQuarterlyEmployees <= params.EmployeeThreshold {
		return finding{details: "Production employee threshold OK"}
	}
	return finding{
		triggered: true,
		details:   fmt.Sprintf("Production with %d employees > %d", *d.AvgQuarterlyEmployees, params.EmployeeThreshold),
		reason: fmt.Sprintf("Production activity with more than %d average quarterly employees is not eligible",
			params.EmployeeThreshold),
	}
}

// ratioDisqualifier fires whenever the activity is declared. Whether the
// matching exception lifts it is decided by the exception rule.
func ratioDisqualifier(activity func(Profile) RatioActivity, label, absent, exceededCode, exceededReason string) func(Profile, Parameters) finding {
	return func(p Profile, params Parameters) finding {
		a := activity(p)
		switch {
		case !a.Active:
			return finding{details: absent}
		case a.EInvoiceRatio == nil:
			return finding{triggered: true, details: label + " without e-invoice ratio - assumed disqualified"}
		case a.EInvoiceRatio.GreaterThan(params.ExceptionRatioThreshold):
			return finding{
				triggered:  true,
				details:    fmt.Sprintf("%s e-invoice ratio %s > %s", label, a.EInvoiceRatio, params.ExceptionRatioThreshold),
				reasonCode: exceededCode,
				reason:     fmt.Sprintf(exceededReason, params.ExceptionRatioThreshold.Shift(2).String()),
			}
		default:
			return finding{triggered: true, details: fmt.Sprintf("%s declared with e-invoice ratio %s", label, a.EInvoiceRatio)}
		}
	}
}

func ratioException(activity func(Profile) RatioActivity, label string) func(Profile, Parameters) finding {
	return func(p Profile, params Parameters) finding {
		a := activity(p)
		if !a.Active || a.EInvoiceRatio == nil {
			return finding{details: label + " e-invoice ratio not provided; exception cannot be verified"}
		}
		if a.EInvoiceRatio.GreaterThan(params.ExceptionRatioThreshold) {
			return finding{details: fmt.Sprintf("%s e-invoice ratio %s > %s", label, a.EInvoiceRatio, params.ExceptionRatioThreshold)}
		}
		return finding{
			triggered: true,
			details:   fmt.Sprintf("%s e-invoice ratio %s <= %s - exception applies", label, a.EInvoiceRatio, params.ExceptionRatioThreshold),
		}
	}
}

func checkLicensedActivities(p Profile, _ Parameters) finding {
	var disqualifying []string
	for _, code := range p.LicensedActivityCodes {
		if a, ok := LookupLicensedActivity(code); ok && a.Disqualifies {
			disqualifying = append(disqualifying, code)
		}
	}
	if len(disqualifying) == 0 {
		return finding{details: "No licensed activities"}
	}
	list := strings.Join(disqualifying, ", ")
	return finding{
		triggered: true,
		details:   "Has licensed activities: " + list,
		reason:    fmt.Sprintf("Licensed activities (%s) are not eligible without compulsory insurance carve-out", list),
	}
}

// checkCarveout lifts 218.5.13 whenever the flag is set, whatever codes were chosen.
func checkCarveout(p Profile, _ Parameters) finding {
	if !p.CompulsoryInsuranceCarveout {
		return finding{details: "Compulsory insurance carve-out not claimed"}
	}
	return finding{triggered: true, details: "Has licensed activities but compulsory insurance carve-out applies"}
}
