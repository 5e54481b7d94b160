package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"simtax/internal/simplifiedtax"
	"simtax/internal/simplifiedtax/service"
	"simtax/pkg/platform/httputil"
	"simtax/pkg/requestcontext"
)

// Service defines the interface for simplified-tax operations.
type Service interface {
	Evaluate(ctx context.Context, raw simplifiedtax.RawProfile, opts simplifiedtax.Options) (*simplifiedtax.Result, error)
	EvaluateBatch(ctx context.Context, raws []simplifiedtax.RawProfile, opts simplifiedtax.Options) ([]service.BatchItem, error)
	LicensedActivities(ctx context.Context, q simplifiedtax.ActivityQuery) ([]simplifiedtax.LicensedActivity, error)
	Parameters(ctx context.Context) simplifiedtax.Parameters
	Rules(ctx context.Context) []simplifiedtax.Rule
}

// Handler wires simplified-tax endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a simplified-tax handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts simplified-tax endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/simplified-tax", func(r chi.Router) {
		r.Post("/evaluate", h.HandleEvaluate)
		r.Post("/evaluate/batch", h.HandleEvaluateBatch)
		r.Get("/licensed-activities", h.HandleLicensedActivities)
		r.Get("/parameters", h.HandleParameters)
	})
}

// HandleEvaluate handles POST /api/v1/simplified-tax/evaluate. ?debug=1 adds the rule trace.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := requestcontext.Now(ctx)

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, req.RawProfile, simplifiedtax.Options{Trace: debugRequested(r)})
	if err != nil {
		h.logFailure(ctx, "simplified tax evaluation failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "simplified tax evaluated",
		"request_id", requestID,
		"route", result.Route,
		"eligible", result.Eligible,
		"reason_code", result.ReasonCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleEvaluateBatch handles POST /api/v1/simplified-tax/evaluate/batch.
func (h *Handler) HandleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := requestcontext.Now(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchEvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	items, err := h.service.EvaluateBatch(ctx, req.Profiles, simplifiedtax.Options{Trace: debugRequested(r)})
	if err != nil {
		h.logFailure(ctx, "simplified tax batch failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "simplified tax batch evaluated",
		"request_id", requestID,
		"size", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromBatch(items))
}

// HandleLicensedActivities handles GET /api/v1/simplified-tax/licensed-activities.
func (h *Handler) HandleLicensedActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := activityQuery(r.URL.Query().Get("search"), r.URL.Query().Get("category"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	activities, err := h.service.LicensedActivities(ctx, q)
	if err != nil {
		h.logFailure(ctx, "licensed activity lookup failed", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromActivities(activities))
}

// HandleParameters handles GET /api/v1/simplified-tax/parameters.
func (h *Handler) HandleParameters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.WriteJSON(w, http.StatusOK, FromParameters(h.service.Parameters(ctx), h.service.Rules(ctx)))
}

// Client errors log at warn; everything else is a server-side failure.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	level := slog.LevelError
	if httputil.StatusFor(err) < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"error", err,
	)
}

func debugRequested(r *http.Request) bool {
	switch r.URL.Query().Get("debug") {
	case "1", "true":
		return true
	}
	return false
}
