package models

import "fmt"

// FailureKind classifies why a source contributed nothing to a run.
type FailureKind string

const (
	FailureTimeout     FailureKind = "timeout"
	FailureHTTPError   FailureKind = "http_error"
	FailureParseError  FailureKind = "parse_error"
	FailureRateLimited FailureKind = "rate_limited"
	FailureUnknown     FailureKind = "unknown"
)

// FetchFailure records a per-source failure. It is reported, never raised.
type FetchFailure struct {
	Source     string      `json:"source"`
	Kind       FailureKind `json:"kind"`
	Reason     string      `json:"reason,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
}

func (f FetchFailure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", f.Source, f.Kind, f.StatusCode, f.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", f.Source, f.Kind, f.Reason)
}

// FailureReport maps source name to its failure for one run.
type FailureReport map[string]FetchFailure

// Kinds flattens the report to source name -> failure kind.
func (r FailureReport) Kinds() map[string]FailureKind {
	out := make(map[string]FailureKind, len(r))
	for name, f := range r {
		out[name] = f.Kind
	}
	return out
}
