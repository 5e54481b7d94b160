package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"

	"simtax/internal/simplifiedtax"
	"simtax/internal/simplifiedtax/metrics"
	dErrors "simtax/pkg/domain-errors"
)

type fakeAmounts struct {
	fixed      map[simplifiedtax.Route]decimal.Decimal
	land       *decimal.Decimal
	err        error
	fixedCalls atomic.Int32
	landCalls  atomic.Int32
}

func (f *fakeAmounts) FixedAmount(_ context.Context, route simplifiedtax.Route) (decimal.Decimal, bool, error) {
	f.fixedCalls.Add(1)
	if f.err != nil {
		return decimal.Zero, false, f.err
	}
	v, ok := f.fixed[route]
	return v, ok, nil
}

func (f *fakeAmounts) LandTaxBase(_ context.Context, _ *simplifiedtax.LandTransfer) (decimal.Decimal, bool, error) {
	f.landCalls.Add(1)
	if f.err != nil {
		return decimal.Zero, false, f.err
	}
	if f.land == nil {
		return decimal.Zero, false, nil
	}
	return *f.land, true, nil
}

func d(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	amounts *fakeAmounts
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.amounts = &fakeAmounts{
		fixed: map[simplifiedtax.Route]decimal.Decimal{
			simplifiedtax.RouteAutoTransport: decimal.NewFromInt(120),
		},
	}
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = s.newService()
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithMetrics(s.metrics),
		WithAmountSource(s.amounts),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
	}
	return New(simplifiedtax.MustNewEngine(simplifiedtax.DefaultParameters()), append(base, opts...)...)
}

// =============================================================================
// Evaluate
// =============================================================================

func (s *ServiceSuite) TestEvaluate() {
	s.Run("general route", func() {
		res, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{
			Turnover: &simplifiedtax.RawTurnover{GrossTurnover12m: d("150000")},
		}, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.True(res.Eligible)
		s.Equal(simplifiedtax.RouteGeneral, res.Route)
		s.Equal("3000", res.TaxAmount.String())
		s.Nil(res.Trace)
	})

	s.Run("ineligible result is not an error", func() {
		res, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{IsVATRegistered: true}, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.False(res.Eligible)
		s.Equal("VAT_REGISTERED", res.ReasonCode)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Reasons.WithLabelValues("VAT_REGISTERED")))
	})

	s.Run("trace default applies when caller did not ask", func() {
		svc := s.newService(WithTraceDefault(true))
		res, err := svc.Evaluate(s.ctx, simplifiedtax.RawProfile{}, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.NotEmpty(res.Trace)
	})
}

func (s *ServiceSuite) TestEvaluateValidationError() {
	_, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{
		Turnover:              &simplifiedtax.RawTurnover{GrossTurnover12m: d("-1")},
		LicensedActivityCodes: []string{"moon_mining"},
	}, simplifiedtax.Options{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.ErrorIs(err, simplifiedtax.ErrValidation)

	var derr *dErrors.Error
	s.Require().ErrorAs(err, &derr)
	fields := make([]string, 0, len(derr.Fields))
	for _, f := range derr.Fields {
		fields = append(fields, f.Field)
	}
	s.ElementsMatch([]string{"turnover.gross_turnover_12m", "licensed_activity_codes"}, fields)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ValidationFailures))
}

// =============================================================================
// Amount resolution
// =============================================================================

func (s *ServiceSuite) TestFixedAmountResolution() {
	s.Run("fixed route gets its table amount", func() {
		res, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{RouteAutoTransport: true}, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.Equal(simplifiedtax.RouteAutoTransport, res.Route)
		s.Require().NotNil(res.TaxAmount)
		s.Equal("120", res.TaxAmount.String())
	})

	s.Run("missing table entry leaves the amount null", func() {
		res, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{RouteAutoFixed22010: true}, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.True(res.Eligible)
		s.Nil(res.TaxAmount)
	})

	s.Run("non automatic profiles skip lookups", func() {
		before := s.amounts.fixedCalls.Load()
		_, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{}, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.Equal(before, s.amounts.fixedCalls.Load())
	})
}

func (s *ServiceSuite) TestLandTaxBaseResolution() {
	s.Run("request base skips the lookup", func() {
		res, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{
			RouteAutoLand: true,
			LandTransfer:  &simplifiedtax.RawLandTransfer{LandTaxBase: d("50")},
		}, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.Equal("100", res.TaxAmount.String())
		s.Zero(s.amounts.landCalls.Load())
	})

	s.Run("looked up base is doubled", func() {
		s.amounts.land = d("75.5")
		res, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{
			RouteAutoLand: true,
			LandTransfer:  &simplifiedtax.RawLandTransfer{AreaHectares: d("3"), LocationZone: "rural"},
		}, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.Equal("151", res.TaxAmount.String())
		s.Equal(int32(1), s.amounts.landCalls.Load())
	})
}

func (s *ServiceSuite) TestLookupFailureIsUnavailable() {
	s.amounts.err = errors.New("registry down")

	_, err := s.service.Evaluate(s.ctx, simplifiedtax.RawProfile{RouteAutoBettingLottery: true}, simplifiedtax.Options{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LookupFailures.WithLabelValues("fixed_amount")))
}

func (s *ServiceSuite) TestIneligibleProfilesSkipLookups() {
	s.amounts.err = errors.New("registry down")

	tests := []struct {
		name    string
		raw     simplifiedtax.RawProfile
		reason  string
		article string
	}{
		{
			name:    "VAT registered transport operator",
			raw:     simplifiedtax.RawProfile{IsVATRegistered: true, RouteAutoTransport: true},
			reason:  "VAT_REGISTERED",
			article: "218.1.1",
		},
		{
			name:    "credit organisation running a lottery",
			raw:     simplifiedtax.RawProfile{IsCreditOrg: true, RouteAutoBettingLottery: true},
			reason:  "FINANCIAL_SECTOR",
			article: "218.5.2",
		},
		{
			name: "VAT registered land transfer without base",
			raw: simplifiedtax.RawProfile{
				IsVATRegistered: true,
				RouteAutoLand:   true,
				LandTransfer:    &simplifiedtax.RawLandTransfer{AreaHectares: d("2"), LocationZone: "rural"},
			},
			reason:  "VAT_REGISTERED",
			article: "218.1.1",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			res, err := s.service.Evaluate(s.ctx, tt.raw, simplifiedtax.Options{})
			s.Require().NoError(err)
			s.False(res.Eligible)
			s.Equal(tt.reason, res.ReasonCode)
			s.Nil(res.TaxAmount)

			articles := make([]string, 0, len(res.LegalBasis))
			for _, lb := range res.LegalBasis {
				articles = append(articles, lb.Article)
			}
			s.Contains(articles, tt.article)
		})
	}

	s.Zero(s.amounts.fixedCalls.Load())
	s.Zero(s.amounts.landCalls.Load())
	s.Zero(testutil.ToFloat64(s.metrics.LookupFailures.WithLabelValues("fixed_amount")))
}

// =============================================================================
// Batch
// =============================================================================

func (s *ServiceSuite) TestEvaluateBatch() {
	s.Run("keeps input order and reports field errors per item", func() {
		raws := []simplifiedtax.RawProfile{
			{Turnover: &simplifiedtax.RawTurnover{GrossTurnover12m: d("100000")}},
			{Turnover: &simplifiedtax.RawTurnover{GrossTurnover12m: d("-5")}},
			{IsVATRegistered: true},
			{RouteAutoTransport: true},
		}
		items, err := s.newService(WithBatchConcurrency(2)).EvaluateBatch(s.ctx, raws, simplifiedtax.Options{})
		s.Require().NoError(err)
		s.Require().Len(items, 4)

		for i, item := range items {
			s.Equal(i, item.Index)
		}
		s.Equal("2000", items[0].Result.TaxAmount.String())
		s.Nil(items[1].Result)
		s.True(dErrors.HasCode(items[1].Err, dErrors.CodeValidation))
		s.False(items[2].Result.Eligible)
		s.Equal(simplifiedtax.RouteAutoTransport, items[3].Result.Route)
	})

	s.Run("empty batch", func() {
		_, err := s.service.EvaluateBatch(s.ctx, nil, simplifiedtax.Options{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("over the limit", func() {
		svc := s.newService(WithBatchLimit(2))
		_, err := svc.EvaluateBatch(s.ctx, make([]simplifiedtax.RawProfile, 3), simplifiedtax.Options{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("lookup failure aborts the batch", func() {
		s.amounts.err = errors.New("registry down")
		defer func() { s.amounts.err = nil }()

		_, err := s.service.EvaluateBatch(s.ctx, []simplifiedtax.RawProfile{{}, {RouteAutoTransport: true}}, simplifiedtax.Options{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

// =============================================================================
// Catalogue and parameters
// =============================================================================

func (s *ServiceSuite) TestLicensedActivities() {
	got, err := s.service.LicensedActivities(s.ctx, simplifiedtax.ActivityQuery{Search: "notary"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("notary", got[0].Code)

	_, err = s.service.LicensedActivities(s.ctx, simplifiedtax.ActivityQuery{Category: "space"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestParametersAndRules() {
	params := s.service.Parameters(s.ctx)
	s.Equal("200000", params.TurnoverThreshold.String())
	s.Equal(simplifiedtax.AutoRouteUniversal, params.AutoRouteDisqualifiers)

	rules := s.service.Rules(s.ctx)
	s.Require().NotEmpty(rules)
	s.Equal("excise_goods", rules[0].ID)
}
