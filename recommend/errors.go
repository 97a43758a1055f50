package recommend

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. Every stage surfaces exactly one
// kind; the HTTP layer maps kinds to statuses and user-facing guidance.
type ErrorKind string

const (
	// KindInvalidInput: caller mistake, not retryable.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindPreviewUnavailable: no audio clip could be found for the seed.
	// Classification needs audio, so this is fatal for the request.
	KindPreviewUnavailable ErrorKind = "preview_unavailable"
	// KindClassificationUnavailable: classifier transport failure.
	KindClassificationUnavailable ErrorKind = "classification_unavailable"
	// KindNoGenrePredicted: classifier ran but produced zero labels.
	// Retrying with the same clip will recur.
	KindNoGenrePredicted ErrorKind = "no_genre_predicted"
	// KindNoCandidatesFound: every search strategy and the exclusion pass
	// left nothing. Retryable; the randomized offset may change results.
	KindNoCandidatesFound ErrorKind = "no_candidates_found"
	// KindUpstreamServiceError: catalog transport failure or timeout.
	KindUpstreamServiceError ErrorKind = "upstream_service_error"
)

// PipelineError carries the failure kind through the orchestrator to the
// HTTP layer. Genre is set only for no_candidates_found.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Genre   string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the pipeline error kind, or upstream_service_error for
// anything untyped that escaped a stage.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUpstreamServiceError
}
