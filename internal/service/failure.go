package service

import "errors"

// FailureKind classifies a job handler failure so the queue knows whether a
// retry can help.
type FailureKind string

const (
	// FailureTransient covers network errors, provider hiccups and anything
	// else that may succeed on a later attempt.
	FailureTransient FailureKind = "transient"

	// FailureValidation means the payload does not satisfy its schema.
	// Retrying replays the same payload, so the job parks immediately.
	FailureValidation FailureKind = "validation"

	// FailureBlocked means a guardrail refused the work (quota, rate, cost).
	// The job parks with the block reason so the caller decides when to
	// resubmit, the queue never retries it on its own.
	FailureBlocked FailureKind = "blocked"

	// FailureDuplicate means the work already happened. Not an error for the
	// caller, but handlers surface it so tests can observe idempotency.
	FailureDuplicate FailureKind = "duplicate"

	// FailureFatal covers misconfiguration such as an unknown job type.
	FailureFatal FailureKind = "fatal"
)

// Retryable reports whether another attempt could produce a different result.
func (k FailureKind) Retryable() bool {
	return k == FailureTransient
}

// StageFailure carries the classification alongside the underlying error.
type StageFailure struct {
	Kind FailureKind
	Err  error
}

func (f *StageFailure) Error() string {
	return string(f.Kind) + ": " + f.Err.Error()
}

func (f *StageFailure) Unwrap() error {
	return f.Err
}

func NewStageFailure(kind FailureKind, err error) *StageFailure {
	return &StageFailure{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from err. Unclassified errors default to
// transient so unknown failures keep their retry budget.
func KindOf(err error) FailureKind {
	var failure *StageFailure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return FailureTransient
}
