package httptransport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simtax/internal/platform/metrics"
	"simtax/internal/platform/middleware"
	"simtax/internal/simplifiedtax"
	"simtax/internal/simplifiedtax/adapters"
	"simtax/internal/simplifiedtax/handler"
	taxmetrics "simtax/internal/simplifiedtax/metrics"
	"simtax/internal/simplifiedtax/service"
	"simtax/pkg/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	reg := prometheus.NewRegistry()

	amounts := adapters.NewParameterTable(adapters.AmountTable{
		FixedAmounts: map[simplifiedtax.Route]decimal.Decimal{
			simplifiedtax.RouteAutoTransport: decimal.NewFromInt(120),
		},
	})
	svc := service.New(
		simplifiedtax.MustNewEngine(simplifiedtax.DefaultParameters()),
		service.WithLogger(logger),
		service.WithMetrics(taxmetrics.NewWithRegisterer(reg)),
		service.WithAmountSource(amounts),
	)

	return NewRouter(Deps{
		Logger:   logger,
		Metrics:  metrics.NewWithRegisterer(reg),
		Gatherer: reg,
		Version:  "test",
	}, handler.New(svc, logger))
}

func evaluate(t *testing.T, router http.Handler, body string) *handler.EvaluateResponse {
	t.Helper()
	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/v1/simplified-tax/evaluate", body)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)
	return testutil.UnmarshalResponse[handler.EvaluateResponse](t, rr)
}

func articles(resp *handler.EvaluateResponse) []string {
	out := make([]string, 0, len(resp.LegalBasis))
	for _, lb := range resp.LegalBasis {
		out = append(out, lb.Article)
	}
	return out
}

func TestEvaluateEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	testutil.Given(t, "a small general taxpayer", func(t *testing.T) {
		resp := evaluate(t, router, `{"turnover": {"gross_turnover_12m": 150000, "vat_exempt_turnover_12m": 0}}`)
		testutil.Then(t, "2% of turnover is due", func(t *testing.T) {
			assert.True(t, resp.Eligible)
			assert.Equal(t, "general", *resp.Route)
			assert.Equal(t, "3000.00", *resp.TaxAmount)
		})
	})

	testutil.Given(t, "a VAT registered taxpayer", func(t *testing.T) {
		resp := evaluate(t, router, `{"is_vat_registered": true, "route_auto_transport": true}`)
		testutil.Then(t, "the regime is unavailable", func(t *testing.T) {
			assert.False(t, resp.Eligible)
			assert.Nil(t, resp.TaxAmount)
			assert.Contains(t, articles(resp), "218.1.1")
		})
	})

	testutil.Given(t, "a property held for three years", func(t *testing.T) {
		resp := evaluate(t, router, `{"route_auto_property": true, "property_transfer": {
			"property_type": "residential", "area_m2": 80, "location_zone": "baku_center", "is_registered_3yr": true}}`)
		testutil.Then(t, "the transfer is exempt", func(t *testing.T) {
			assert.True(t, resp.Eligible)
			assert.Equal(t, "0.00", *resp.TaxAmount)
		})
	})

	testutil.Given(t, "a wholesaler", func(t *testing.T) {
		testutil.When(t, "half of sales are e-invoiced", func(t *testing.T) {
			resp := evaluate(t, router, `{"does_wholesale": true, "wholesale_einvoice_ratio": 0.5}`)
			assert.False(t, resp.Eligible)
			assert.Contains(t, articles(resp), "218.5.9")
		})
		testutil.When(t, "a fifth of sales are e-invoiced", func(t *testing.T) {
			resp := evaluate(t, router, `{"does_wholesale": true, "wholesale_einvoice_ratio": 0.2}`)
			assert.True(t, resp.Eligible)
			require.NotEmpty(t, resp.ExemptionsApplied)
			assert.Contains(t, strings.Join(resp.ExemptionsApplied, " "), "218.6.1")
		})
	})

	testutil.Given(t, "a transport operator", func(t *testing.T) {
		resp := evaluate(t, router, `{"route_auto_transport": true}`)
		testutil.Then(t, "the configured fixed amount applies", func(t *testing.T) {
			assert.Equal(t, "auto_transport", *resp.Route)
			assert.Equal(t, "120.00", *resp.TaxAmount)
		})
		testutil.And(t, "no rate or base is reported", func(t *testing.T) {
			assert.Nil(t, resp.TaxRate)
			assert.Nil(t, resp.TaxBase)
		})
	})
}

func TestEvaluateValidationEnvelope(t *testing.T) {
	router := newTestRouter(t)
	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/v1/simplified-tax/evaluate",
		`{"route_auto_property": true, "b2b_einvoice_ratio": 1.5}`)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	testutil.AssertFieldErrors(t, rr, "property_transfer", "b2b_einvoice_ratio")
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("health", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "version", "test")
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("health reports an unreachable registry", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		unhealthy := NewRouter(Deps{
			Logger:   logger,
			Gatherer: prometheus.NewRegistry(),
			Version:  "test",
			Ready:    func(context.Context) error { return errors.New("redis ping failed") },
		})
		rr := testutil.DoRequest(unhealthy, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "status", "unhealthy")
	})

	t.Run("metrics exposes evaluation counters", func(t *testing.T) {
		evaluate(t, router, `{"is_vat_registered": true}`)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		body := rr.Body.String()
		assert.Contains(t, body, "simtax_evaluation_outcomes_total")
		assert.Contains(t, body, `simtax_ineligibility_reasons_total{reason_code="VAT_REGISTERED"}`)
		assert.Contains(t, body, "simtax_http_requests_total")
	})

	t.Run("unknown path uses the error envelope", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/nope"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("wrong method", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/v1/simplified-tax/evaluate"))
		testutil.AssertStatusAndError(t, rr, http.StatusMethodNotAllowed, "method_not_allowed")
	})
}
