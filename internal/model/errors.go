package model

import (
	"errors"
	"fmt"
)

// Terminal conditions distinguishable by the caller. Adapter-level failures
// (SourceError) are always recovered by the orchestrator via fallback; only
// total evidence absence or generation failure surfaces as one of these.
var (
	// ErrNoEvidenceAvailable: every dispatched adapter failed. The caller
	// receives an explicit cannot-answer condition, never a silent empty.
	ErrNoEvidenceAvailable = errors.New("no evidence available from any source")

	// ErrInsufficientEvidence: the merged evidence set was empty, so no
	// answer may be composed at all.
	ErrInsufficientEvidence = errors.New("insufficient evidence to compose an answer")

	// ErrCompositionFailed: prose generation failed while evidence exists.
	// Surfaced as a degraded citations-only answer, not a hard failure.
	ErrCompositionFailed = errors.New("answer generation failed")
)

// SourceError is a per-adapter retrieval failure. Non-fatal to the request:
// the orchestrator recovers it locally through fallback or partial results.
type SourceError struct {
	Source  SourceKind
	Timeout bool // Deadline exceeded, as opposed to unreachable backend
	Err     error
}

func (e *SourceError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceUnavailable wraps a backend-unreachable failure for an adapter.
func NewSourceUnavailable(source SourceKind, err error) *SourceError {
	return &SourceError{Source: source, Err: err}
}

// NewSourceTimeout wraps a deadline-exceeded failure for an adapter.
func NewSourceTimeout(source SourceKind, err error) *SourceError {
	return &SourceError{Source: source, Timeout: true, Err: err}
}

// IsSourceTimeout reports whether err is an adapter deadline failure.
func IsSourceTimeout(err error) bool {
	var se *SourceError
	return errors.As(err, &se) && se.Timeout
}

// IsSourceUnavailable reports whether err is an adapter reachability failure.
func IsSourceUnavailable(err error) bool {
	var se *SourceError
	return errors.As(err, &se) && !se.Timeout
}
