package simplifiedtax

import "fmt"

// Outcome is the terminal state reached by route selection.
type Outcome string

const (
	OutcomeEligible    Outcome = "eligible"
	OutcomeExempt      Outcome = "exempt"
	OutcomeNotEligible Outcome = "not_eligible"
)

type routeState int

const (
	stateStart routeState = iota
	stateVATCheck
	stateAutoRouteCheck
	statePropertySubcheck
	stateTurnoverRoute
	stateEligible
	stateExempt
	stateNotEligible
)

var routeStateNames = map[routeState]string{
	stateStart:            "START",
	stateVATCheck:         "VAT_CHECK",
	stateAutoRouteCheck:   "AUTO_ROUTE_CHECK",
	statePropertySubcheck: "PROPERTY_SUBCHECK",
	stateTurnoverRoute:    "TURNOVER_ROUTE",
	stateEligible:         "ELIGIBLE",
	stateExempt:           "EXEMPT",
	stateNotEligible:      "NOT_ELIGIBLE",
}

func (s routeState) String() string {
	if name, ok := routeStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("routeState(%d)", int(s))
}

// Selection is what route selection decided before disqualifiers run.
type Selection struct {
	Outcome Outcome
	// Route is empty when the outcome is OutcomeNotEligible.
	Route    Route
	Turnover *TurnoverCalculation

	ReasonCode        string
	ReasonDescription string
	// Citations are the article keys backing the selection.
	Citations  []string
	Exemptions []string
}

// routeMachine walks the route states for one profile.
type routeMachine struct {
	profile Profile
	params  Parameters
	trace   *trace
	sel     Selection
}

func (m *routeMachine) run(state routeState) (Selection, error) {
	for {
		switch state {
		case stateStart:
			state = stateVATCheck
		case stateVATCheck:
			state = m.vatCheck()
		case stateAutoRouteCheck:
			state = m.autoRouteCheck()
		case statePropertySubcheck:
			state = m.propertySubcheck()
		case stateTurnoverRoute:
			state = m.turnoverRoute()
		case stateEligible, stateExempt, stateNotEligible:
			return m.sel, nil
		default:
			return Selection{}, &InvariantError{State: state.String(), Detail: "no transition defined"}
		}
	}
}

func (m *routeMachine) vatCheck() routeState {
	if m.profile.VATRegistered {
		m.trace.record("vat_registration", false, "218.1.1", "Taxpayer is VAT registered - not eligible for simplified tax")
		m.sel = Selection{
			Outcome:           OutcomeNotEligible,
			ReasonCode:        "VAT_REGISTERED",
			ReasonDescription: "VAT-registered taxpayers cannot use simplified tax regime (218.1.1)",
			Citations:         []string{"218.1.1"},
		}
		return stateNotEligible
	}
	m.trace.record("vat_registration", true, "218.1.1", "Not VAT registered")
	return stateAutoRouteCheck
}

func (m *routeMachine) autoRouteCheck() routeState {
	declared := m.profile.AutoRoutes.Declared()
	if len(declared) == 0 {
		m.trace.record("automatic_route", true, "218.4", "No automatic route declared")
		return stateTurnoverRoute
	}

	winner := declared[0]
	m.trace.record("automatic_route", true, winner.Article(), "Automatic simplified tax route: %s", winner)
	for _, shadowed := range declared[1:] {
		m.trace.record("automatic_route_shadowed", true, shadowed.Article(),
			"Route %s also declared but shadowed by higher-priority %s", shadowed, winner)
	}

	m.sel = Selection{
		Outcome:   OutcomeEligible,
		Route:     winner,
		Citations: []string{winner.Article()},
	}
	if winner == RouteAutoProperty {
		return statePropertySubcheck
	}
	return stateEligible
}

// propertyExemptions lists the 218-1.1.5 full exemptions in statutory order.
var propertyExemptions = []struct {
	rule      string
	applies   func(*PropertyTransfer) bool
	label     string
	citations []string
}{
	{
		rule:      "property_exemption_registered_3yr",
		applies:   func(p *PropertyTransfer) bool { return p.IsRegistered3yr },
		label:     "3-year registration exemption (218-1.1.5.1)",
		citations: []string{"218-1.1.5.1"},
	},
	{
		rule:      "property_exemption_proof_one_home",
		applies:   func(p *PropertyTransfer) bool { return p.HasProof3yrOneHome },
		label:     "3-year residence proof + one home exemption (218-1.1.5.1-1)",
		citations: []string{"218-1.1.5.1-1"},
	},
	{
		rule:      "property_exemption_family",
		applies:   func(p *PropertyTransfer) bool { return p.IsFamilyGiftInheritance },
		label:     "Family gift/inheritance exemption (102.1.3.2)",
		citations: []string{"218-1.1.5.2", "102.1.3.2"},
	},
}

func (m *routeMachine) propertySubcheck() routeState {
	prop := m.profile.Property
	if prop == nil {
		m.trace.record("property_exemption", true, "218.4.3", "No property details supplied; tax cannot be computed")
		return stateEligible
	}

	for _, ex := range propertyExemptions {
		if !ex.applies(prop) {
			m.trace.record(ex.rule, false, ex.citations[0], "Not applicable")
			continue
		}
		m.trace.record(ex.rule, true, ex.citations[0], "Exempt: %s", ex.label)
		m.sel.Exemptions = append(m.sel.Exemptions, ex.label)
		m.sel.Citations = append(m.sel.Citations, ex.citations...)
	}

	if len(m.sel.Exemptions) > 0 {
		m.sel.Outcome = OutcomeExempt
		return stateExempt
	}
	return stateEligible
}

func (m *routeMachine) turnoverRoute() routeState {
	if m.profile.Turnover == nil {
		m.trace.record("turnover_threshold", true, "218.1.1", "No turnover supplied; general route assumed")
		m.sel = Selection{Outcome: OutcomeEligible, Route: RouteGeneral, Citations: []string{"218.1.1"}}
		return stateEligible
	}

	calc := CalculateTurnover(*m.profile.Turnover, m.params)
	m.trace.record("turnover_calculation", true, "218.1-1", "%s", calc.describe())

	threshold := m.params.TurnoverThreshold
	if !calc.ExceedsThreshold(m.params) {
		m.trace.record("turnover_threshold", true, "218.1.1", "Adjusted turnover %s <= %s", calc.Adjusted, threshold)
		m.sel = Selection{Outcome: OutcomeEligible, Route: RouteGeneral, Turnover: &calc, Citations: []string{"218.1.1"}}
		return stateEligible
	}

	if m.profile.TradeOrCatering() {
		m.trace.record("turnover_threshold", true, "218.1.2",
			"Trade/catering: turnover %s > %s, eligible under 218.1.2", calc.Adjusted, threshold)
		m.sel = Selection{Outcome: OutcomeEligible, Route: RouteTradeCatering, Turnover: &calc, Citations: []string{"218.1.2"}}
		return stateEligible
	}

	m.trace.record("turnover_threshold", false, "218.1.1", "Adjusted turnover %s > %s", calc.Adjusted, threshold)
	m.sel = Selection{
		Outcome:           OutcomeNotEligible,
		Turnover:          &calc,
		ReasonCode:        "TURNOVER_EXCEEDED",
		ReasonDescription: fmt.Sprintf("Adjusted turnover (%s AZN) exceeds %s AZN threshold (218.1.1)", calc.Adjusted, threshold),
		Citations:         []string{"218.1.1"},
	}
	return stateNotEligible
}

// SelectRoute runs route selection for a validated profile.
func (e *Engine) SelectRoute(p Profile) (Selection, error) {
	return e.selectRoute(p, &trace{})
}

func (e *Engine) selectRoute(p Profile, tr *trace) (Selection, error) {
	m := &routeMachine{profile: p, params: e.params, trace: tr}
	return m.run(stateStart)
}
