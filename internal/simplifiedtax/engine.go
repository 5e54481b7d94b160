package simplifiedtax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the engine reports in.
const Currency = "AZN"

// Options tune a single evaluation.
type Options struct {
	// Trace exposes the rule-by-rule record on the result.
	Trace bool
}

// Result is the outcome of one evaluation.
type Result struct {
	Eligible bool
	Outcome  Outcome
	// Route is empty when the taxpayer is not eligible.
	Route Route

	TaxAmount *decimal.Decimal
	TaxBase   *decimal.Decimal
	TaxRate   *decimal.Decimal
	Currency  string

	ExemptionsApplied []string
	ReasonCode        string
	ReasonDescription string
	LegalBasis        []LegalBasis

	// Trace is nil unless Options.Trace was set.
	Trace []TraceEntry
}

// Engine evaluates profiles against a frozen parameter set and rule registry.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	params Parameters
	rules  RuleSet
}

// NewEngine validates params and returns an engine bound to a private copy.
func NewEngine(params Parameters) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params.clone(), rules: DefaultRuleSet()}, nil
}

// MustNewEngine is NewEngine for parameters known to be valid.
func MustNewEngine(params Parameters) *Engine {
	e, err := NewEngine(params)
	if err != nil {
		panic(fmt.Sprintf("simplifiedtax: %v", err))
	}
	return e
}

// Parameters returns a copy of the engine's parameters.
func (e *Engine) Parameters() Parameters {
	return e.params.clone()
}

// Rules returns the rule registry in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules.Rules()
}

// Evaluate decides eligibility, route and tax for a validated profile.
// Ineligibility is reported on the result; an error means an invariant broke.
func (e *Engine) Evaluate(p Profile, ext ExternalAmounts, opts Options) (*Result, error) {
	tr := &trace{}

	sel, err := e.selectRoute(p, tr)
	if err != nil {
		return nil, err
	}

	// Rules run even after a route failure so the trace stays complete.
	automatic := sel.Route.IsAutomatic()
	rules := e.rules.evaluate(p, e.params, automatic, tr)

	res := &Result{Currency: Currency}
	switch {
	case sel.Outcome == OutcomeNotEligible:
		res.Outcome = OutcomeNotEligible
		res.ReasonCode = sel.ReasonCode
		res.ReasonDescription = sel.ReasonDescription
		res.LegalBasis = e.cite(sel.Citations...)

	case !rules.Eligible:
		res.Outcome = OutcomeNotEligible
		res.ReasonCode = rules.Failure.ReasonCode
		res.ReasonDescription = rules.Failure.ReasonDescription
		res.LegalBasis = e.cite(rules.Failure.Citations...)

	default:
		tax, err := e.computeTax(sel, p, ext, tr)
		if err != nil {
			return nil, err
		}
		res.Eligible = true
		res.Outcome = sel.Outcome
		res.Route = sel.Route
		res.TaxAmount, res.TaxBase, res.TaxRate = tax.Amount, tax.Base, tax.Rate

		res.ExemptionsApplied = make([]string, 0, len(sel.Exemptions)+len(rules.Exemptions)+len(tax.Exemptions))
		res.ExemptionsApplied = append(res.ExemptionsApplied, sel.Exemptions...)
		res.ExemptionsApplied = append(res.ExemptionsApplied, rules.Exemptions...)
		res.ExemptionsApplied = append(res.ExemptionsApplied, tax.Exemptions...)

		citations := make([]string, 0, len(sel.Citations)+len(rules.Citations)+len(tax.Citations))
		citations = append(citations, sel.Citations...)
		citations = append(citations, rules.Citations...)
		citations = append(citations, tax.Citations...)
		res.LegalBasis = e.cite(citations...)
	}

	if res.ExemptionsApplied == nil {
		res.ExemptionsApplied = []string{}
	}
	if opts.Trace {
		res.Trace = tr.snapshot()
	}
	return res, nil
}
