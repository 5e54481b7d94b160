package handler

import (
	"github.com/shopspring/decimal"

	"simtax/internal/simplifiedtax"
	"simtax/internal/simplifiedtax/service"
	"simtax/pkg/platform/httputil"
)

// EvaluateResponse is the HTTP response for POST /simplified-tax/evaluate.
// Money renders as two-decimal strings; rates render unpadded.
type EvaluateResponse struct {
	Eligible          bool                 `json:"eligible"`
	TaxAmount         *string              `json:"tax_amount"`
	Currency          string               `json:"currency"`
	Route             *string              `json:"route"`
	TaxBase           *string              `json:"tax_base"`
	TaxRate           *string              `json:"tax_rate"`
	ExemptionsApplied []string             `json:"exemptions_applied"`
	ReasonCode        *string              `json:"reason_code"`
	ReasonDescription *string              `json:"reason_description"`
	LegalBasis        []LegalBasisResponse `json:"legal_basis"`
	DebugTrace        []TraceEntryResponse `json:"debug_trace,omitempty"`
}

type LegalBasisResponse struct {
	Article     string `json:"article"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url"`
}

type TraceEntryResponse struct {
	Rule    string `json:"rule"`
	Result  bool   `json:"result"`
	Details string `json:"details"`
	Article string `json:"article"`
}

// FromResult converts a domain Result to an HTTP response.
func FromResult(result *simplifiedtax.Result) *EvaluateResponse {
	resp := &EvaluateResponse{
		Eligible:          result.Eligible,
		TaxAmount:         money(result.TaxAmount),
		Currency:          result.Currency,
		Route:             optional(string(result.Route)),
		TaxBase:           money(result.TaxBase),
		TaxRate:           rate(result.TaxRate),
		ExemptionsApplied: result.ExemptionsApplied,
		ReasonCode:        optional(result.ReasonCode),
		ReasonDescription: optional(result.ReasonDescription),
		LegalBasis:        make([]LegalBasisResponse, 0, len(result.LegalBasis)),
	}
	if resp.ExemptionsApplied == nil {
		resp.ExemptionsApplied = []string{}
	}
	for _, lb := range result.LegalBasis {
		resp.LegalBasis = append(resp.LegalBasis, LegalBasisResponse{
			Article:     lb.Article,
			Description: lb.Description,
			SourceURL:   lb.SourceURL,
		})
	}
	if result.Trace != nil {
		resp.DebugTrace = make([]TraceEntryResponse, 0, len(result.Trace))
		for _, e := range result.Trace {
			resp.DebugTrace = append(resp.DebugTrace, TraceEntryResponse{
				Rule:    e.Rule,
				Result:  e.Passed,
				Details: e.Details,
				Article: e.Article,
			})
		}
	}
	return resp
}

// BatchEvaluateResponse keeps items in request order.
type BatchEvaluateResponse struct {
	Results []BatchItemResponse `json:"results"`
}

// BatchItemResponse carries either a result or the item's validation error.
type BatchItemResponse struct {
	Index  int                     `json:"index"`
	Result *EvaluateResponse       `json:"result,omitempty"`
	Error  *httputil.ErrorResponse `json:"error,omitempty"`
}

// FromBatch converts service batch items to an HTTP response.
func FromBatch(items []service.BatchItem) *BatchEvaluateResponse {
	resp := &BatchEvaluateResponse{Results: make([]BatchItemResponse, 0, len(items))}
	for _, item := range items {
		out := BatchItemResponse{Index: item.Index}
		if item.Err != nil {
			body := httputil.ErrorBody(item.Err)
			out.Error = &body
		} else {
			out.Result = FromResult(item.Result)
		}
		resp.Results = append(resp.Results, out)
	}
	return resp
}

// LicensedActivitiesResponse is the HTTP response for GET /simplified-tax/licensed-activities.
type LicensedActivitiesResponse struct {
	Activities []LicensedActivityResponse  `json:"activities"`
	Categories map[string]CategoryResponse `json:"categories"`
}

type LicensedActivityResponse struct {
	Code         string `json:"code"`
	NameAZ       string `json:"name_az"`
	NameEN       string `json:"name_en"`
	Category     string `json:"category"`
	Disqualifies bool   `json:"disqualifies"`
}

type CategoryResponse struct {
	NameAZ string `json:"az"`
	NameEN string `json:"en"`
}

func FromActivities(list []simplifiedtax.LicensedActivity) *LicensedActivitiesResponse {
	resp := &LicensedActivitiesResponse{
		Activities: make([]LicensedActivityResponse, 0, len(list)),
		Categories: make(map[string]CategoryResponse, len(simplifiedtax.Categories)),
	}
	for _, a := range list {
		resp.Activities = append(resp.Activities, LicensedActivityResponse{
			Code:         a.Code,
			NameAZ:       a.NameAZ,
			NameEN:       a.NameEN,
			Category:     string(a.Category),
			Disqualifies: a.Disqualifies,
		})
	}
	for _, c := range simplifiedtax.Categories {
		resp.Categories[string(c.Code)] = CategoryResponse{NameAZ: c.NameAZ, NameEN: c.NameEN}
	}
	return resp
}

// ParametersResponse is the HTTP response for GET /simplified-tax/parameters.
type ParametersResponse struct {
	TurnoverThreshold       string            `json:"turnover_threshold"`
	POSCoefficient          string            `json:"pos_coefficient"`
	FixedAssetsThreshold    string            `json:"fixed_assets_threshold"`
	EmployeeThreshold       int               `json:"employee_threshold"`
	ExceptionRatioThreshold string            `json:"exception_ratio_threshold"`
	GeneralTaxRate          string            `json:"general_tax_rate"`
	TradeGeneralRate        string            `json:"trade_general_rate"`
	TradePOSRate            string            `json:"trade_pos_rate"`
	PropertyTaxPerM2        string            `json:"property_tax_per_m2"`
	PropertyExemptArea      string            `json:"property_exempt_area"`
	ZoneCoefficients        map[string]string `json:"zone_coefficients"`
	LandMultiplier          string            `json:"land_multiplier"`
	AutoRouteDisqualifiers  string            `json:"auto_route_disqualifiers"`
	TradeSplitMode          string            `json:"trade_split_mode"`
	TradePOSShare           string            `json:"trade_pos_share"`
	FloorAdjustedTurnover   bool              `json:"floor_adjusted_turnover"`
	SourceURL               string            `json:"source_url"`
	Rules                   []RuleResponse    `json:"rules"`
}

type RuleResponse struct {
	ID         string   `json:"id"`
	Article    string   `json:"article"`
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	ReasonCode string   `json:"reason_code,omitempty"`
	Citations  []string `json:"citations,omitempty"`
	Universal  bool     `json:"universal"`
	Suppresses string   `json:"suppresses,omitempty"`
}

func FromParameters(p simplifiedtax.Parameters, rules []simplifiedtax.Rule) *ParametersResponse {
	resp := &ParametersResponse{
		TurnoverThreshold:       p.TurnoverThreshold.String(),
		POSCoefficient:          p.POSCoefficient.String(),
		FixedAssetsThreshold:    p.FixedAssetsThreshold.String(),
		EmployeeThreshold:       p.EmployeeThreshold,
		ExceptionRatioThreshold: p.ExceptionRatioThreshold.String(),
		GeneralTaxRate:          p.GeneralTaxRate.String(),
		TradeGeneralRate:        p.TradeGeneralRate.String(),
		TradePOSRate:            p.TradePOSRate.String(),
		PropertyTaxPerM2:        p.PropertyTaxPerM2.String(),
		PropertyExemptArea:      p.PropertyExemptArea.String(),
		ZoneCoefficients:        make(map[string]string, len(p.ZoneCoefficients)),
		LandMultiplier:          p.LandMultiplier.String(),
		AutoRouteDisqualifiers:  string(p.AutoRouteDisqualifiers),
		TradeSplitMode:          string(p.TradeSplitMode),
		TradePOSShare:           p.TradePOSShare.String(),
		FloorAdjustedTurnover:   p.FloorAdjustedTurnover,
		SourceURL:               p.SourceURL,
		Rules:                   make([]RuleResponse, 0, len(rules)),
	}
	for zone, coef := range p.ZoneCoefficients {
		resp.ZoneCoefficients[string(zone)] = coef.String()
	}
	for _, r := range rules {
		resp.Rules = append(resp.Rules, RuleResponse{
			ID:         r.ID,
			Article:    r.Article,
			Kind:       string(r.Kind),
			Message:    r.Message,
			ReasonCode: r.ReasonCode,
			Citations:  r.Citations,
			Universal:  r.Universal,
			Suppresses: r.Suppresses,
		})
	}
	return resp
}

func money(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func rate(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
