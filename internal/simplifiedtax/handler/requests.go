package handler

import (
	"fmt"

	"simtax/internal/simplifiedtax"
	dErrors "simtax/pkg/domain-errors"
)

// EvaluateRequest is the HTTP request body for POST /simplified-tax/evaluate.
// Field-level checks belong to the service, which reports every field at once.
type EvaluateRequest struct {
	simplifiedtax.RawProfile
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// BatchEvaluateRequest is the HTTP request body for POST /simplified-tax/evaluate/batch.
type BatchEvaluateRequest struct {
	Profiles []simplifiedtax.RawProfile `json:"profiles"`
}

// Validate rejects empty batches before they reach the service.
func (r *BatchEvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Profiles) == 0 {
		return dErrors.New(dErrors.CodeValidation, "profiles is required").
			WithFields(dErrors.FieldDetail{Field: "profiles", Message: "must contain at least one profile"})
	}
	return nil
}

const maxSearchLength = 100

// activityQuery parses the licensed-activities query string.
func activityQuery(search, category string) (simplifiedtax.ActivityQuery, error) {
	if len(search) > maxSearchLength {
		return simplifiedtax.ActivityQuery{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("search must be at most %d characters", maxSearchLength))
	}
	return simplifiedtax.ActivityQuery{
		Search:   search,
		Category: simplifiedtax.ActivityCategory(category),
	}, nil
}
