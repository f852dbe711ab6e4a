package verify

import (
	"context"
	"log/slog"
	"strings"

	"firewatch/internal/logging"
	"firewatch/internal/services/llm"
)

// Classification labels. The set is closed: anything else a model produces is
// coerced to ambiguous.
const (
	LabelFarm       = "farm"
	LabelIndustrial = "industrial"
	LabelAmbiguous  = "ambiguous"
)

// ReasonUnavailable marks results produced without a model verdict, after the
// scorer exhausted its retries.
const ReasonUnavailable = "verification_unavailable"

// Result is the verifier's verdict for one event.
type Result struct {
	Label      string
	Confidence float64
	Reason     string
}

// Actionable reports whether the verdict supports alerting at the given
// confidence floor.
func (r Result) Actionable(floor float64) bool {
	return r.Label == LabelFarm && r.Confidence >= floor
}

// Suppress reports whether the event should be persisted as suppressed.
// Industrial and low-confidence verdicts stay in the ledger but never alert.
func (r Result) Suppress(floor float64) bool {
	return !r.Actionable(floor)
}

// Scorer produces a classification from a rendered feature bundle. The LLM
// client satisfies this; tests substitute fakes.
type Scorer interface {
	ClassifyFire(ctx context.Context, featureBundle string) (llm.Classification, error)
}

// Verifier turns feature bundles into closed-set verdicts. Model failures
// degrade to an ambiguous verdict rather than failing the pipeline.
type Verifier struct {
	scorer Scorer
	logger *slog.Logger
}

// New constructs a verifier.
func New(scorer Scorer, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Verifier{scorer: scorer, logger: logger}
}

// Verify classifies one event. The returned label is always one of the closed
// set. An error is returned only for context cancellation; scorer failures
// and malformed verdicts map to ambiguous results.
func (v *Verifier) Verify(ctx context.Context, features Features) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	classification, err := v.scorer.ClassifyFire(ctx, features.Bundle())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		v.logger.Warn("semantic verification unavailable",
			logging.String(logging.FieldEventID, features.EventID),
			logging.Error(err))
		return Result{Label: LabelAmbiguous, Confidence: 0, Reason: ReasonUnavailable}, nil
	}

	label := strings.ToLower(strings.TrimSpace(classification.Label))
	switch label {
	case LabelFarm, LabelIndustrial, LabelAmbiguous:
	default:
		v.logger.Warn("model returned label outside the closed set",
			logging.String(logging.FieldEventID, features.EventID),
			logging.String("label", classification.Label))
		return Result{Label: LabelAmbiguous, Confidence: 0, Reason: "non_conforming_label"}, nil
	}

	confidence := classification.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Result{Label: label, Confidence: confidence, Reason: classification.Reason}, nil
}
