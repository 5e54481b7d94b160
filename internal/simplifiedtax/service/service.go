package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"simtax/internal/simplifiedtax"
	"simtax/internal/simplifiedtax/metrics"
	"simtax/internal/simplifiedtax/ports"
	dErrors "simtax/pkg/domain-errors"
)

const (
	defaultBatchLimit       = 100
	defaultBatchConcurrency = 8
	tracerName              = "simtax/simplifiedtax"
)

// Service runs evaluations: validation, amount lookups, the engine, and
// the observability around them.
type Service struct {
	engine       *simplifiedtax.Engine
	amounts      ports.AmountSource
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	batchLimit   int
	concurrency  int
	traceDefault bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAmountSource sets where fixed amounts and land tax bases come from.
// Without one, those amounts are reported as unavailable.
func WithAmountSource(src ports.AmountSource) Option {
	return func(s *Service) {
		s.amounts = src
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithBatchLimit caps how many profiles one batch may carry.
func WithBatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

// WithBatchConcurrency caps how many batch items are evaluated at once.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithTraceDefault turns the debug trace on for every evaluation.
func WithTraceDefault(on bool) Option {
	return func(s *Service) {
		s.traceDefault = on
	}
}

// New constructs a Service around an engine.
func New(engine *simplifiedtax.Engine, opts ...Option) *Service {
	s := &Service{
		engine:      engine,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
		batchLimit:  defaultBatchLimit,
		concurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate validates raw, runs the engine and, for eligible automatic routes,
// resolves external amounts before computing the tax.
// Invalid input yields a CodeValidation error carrying every offending field.
func (s *Service) Evaluate(ctx context.Context, raw simplifiedtax.RawProfile, opts simplifiedtax.Options) (*simplifiedtax.Result, error) {
	ctx, span := s.tracer.Start(ctx, "simplifiedtax.Evaluate")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.ObserveEvaluateLatency(time.Since(start))
	}()

	profile, err := simplifiedtax.Validate(raw)
	if err != nil {
		s.metrics.IncrementValidationFailure()
		span.SetStatus(codes.Error, "validation failed")
		return nil, validationError(err)
	}

	// Amounts are looked up only for eligible results on routes that need one.
	opts.Trace = opts.Trace || s.traceDefault
	result, err := s.engine.Evaluate(profile, simplifiedtax.ExternalAmounts{}, opts)
	if err == nil && result.Eligible && s.needsLookup(result.Route, profile) {
		ext, lerr := s.resolveAmounts(ctx, result.Route, profile)
		if lerr != nil {
			span.RecordError(lerr)
			span.SetStatus(codes.Error, "amount lookup failed")
			return nil, lerr
		}
		result, err = s.engine.Evaluate(profile, ext, opts)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "simplified tax evaluation invariant violated", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invariant violated")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "evaluation failed")
	}

	span.SetAttributes(
		attribute.Bool("simtax.eligible", result.Eligible),
		attribute.String("simtax.route", string(result.Route)),
		attribute.String("simtax.reason_code", result.ReasonCode),
	)
	s.metrics.IncrementOutcome(string(result.Route), result.Eligible)
	if !result.Eligible {
		s.metrics.IncrementReason(result.ReasonCode)
	}
	return result, nil
}

// BatchItem is the outcome of one profile in a batch. Exactly one of Result
// and Err is set; Err is always a validation error.
type BatchItem struct {
	Index  int
	Result *simplifiedtax.Result
	Err    error
}

// EvaluateBatch evaluates profiles concurrently and returns items in input
// order. Validation failures are reported per item; any other failure aborts
// the whole batch.
func (s *Service) EvaluateBatch(ctx context.Context, raws []simplifiedtax.RawProfile, opts simplifiedtax.Options) ([]BatchItem, error) {
	if len(raws) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "batch must contain at least one profile")
	}
	if len(raws) > s.batchLimit {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("batch exceeds limit of %d profiles", s.batchLimit))
	}

	ctx, span := s.tracer.Start(ctx, "simplifiedtax.EvaluateBatch", trace.WithAttributes(attribute.Int("simtax.batch_size", len(raws))))
	defer span.End()
	s.metrics.ObserveBatchSize(len(raws))

	items := make([]BatchItem, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range raws {
		g.Go(func() error {
			result, err := s.Evaluate(gctx, raws[i], opts)
			items[i] = BatchItem{Index: i, Result: result}
			if err != nil {
				if !dErrors.HasCode(err, dErrors.CodeValidation) {
					return fmt.Errorf("batch item %d: %w", i, err)
				}
				items[i].Err = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch aborted")
		return nil, err
	}
	return items, nil
}

// LicensedActivities searches the licensed-activity catalogue.
func (s *Service) LicensedActivities(_ context.Context, q simplifiedtax.ActivityQuery) ([]simplifiedtax.LicensedActivity, error) {
	if q.Category != "" && !simplifiedtax.ValidCategory(q.Category) {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown category %q", q.Category))
	}
	return simplifiedtax.LicensedActivities(q), nil
}

// Parameters returns the parameter set the engine was built with.
func (s *Service) Parameters(_ context.Context) simplifiedtax.Parameters {
	return s.engine.Parameters()
}

// Rules returns the disqualifier registry in evaluation order.
func (s *Service) Rules(_ context.Context) []simplifiedtax.Rule {
	return s.engine.Rules()
}

func (s *Service) needsLookup(route simplifiedtax.Route, p simplifiedtax.Profile) bool {
	if s.amounts == nil {
		return false
	}
	switch route {
	case simplifiedtax.RouteAutoTransport, simplifiedtax.RouteAutoBettingLottery, simplifiedtax.RouteAutoFixed22010:
		return true
	case simplifiedtax.RouteAutoLand:
		return p.Land != nil && p.Land.LandTaxBase == nil
	}
	return false
}

func (s *Service) resolveAmounts(ctx context.Context, route simplifiedtax.Route, p simplifiedtax.Profile) (simplifiedtax.ExternalAmounts, error) {
	var ext simplifiedtax.ExternalAmounts
	if route == simplifiedtax.RouteAutoLand {
		base, found, err := s.amounts.LandTaxBase(ctx, p.Land)
		if err != nil {
			return ext, s.lookupError(ctx, "land_tax_base", route, err)
		}
		if found {
			ext.LandTaxBase = &base
		}
		return ext, nil
	}

	amount, found, err := s.amounts.FixedAmount(ctx, route)
	if err != nil {
		return ext, s.lookupError(ctx, "fixed_amount", route, err)
	}
	if found {
		ext.FixedAmount = &amount
	}
	return ext, nil
}

func (s *Service) lookupError(ctx context.Context, kind string, route simplifiedtax.Route, err error) error {
	s.metrics.IncrementLookupFailure(kind)
	s.logger.WarnContext(ctx, "amount lookup failed",
		"kind", kind,
		"route", route,
		"error", err,
	)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, kind+" lookup failed")
}

func validationError(err error) error {
	derr := dErrors.Wrap(err, dErrors.CodeValidation, "invalid taxpayer profile")
	var verr *simplifiedtax.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			derr = derr.WithFields(dErrors.FieldDetail{Field: f.Field, Message: f.Message})
		}
	}
	return derr
}
