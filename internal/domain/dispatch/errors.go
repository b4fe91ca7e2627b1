package dispatch

import (
	"errors"
	"fmt"
)

// Kind classifies why a request did not complete.
type Kind string

const (
	KindClassificationAmbiguous  Kind = "CLASSIFICATION_AMBIGUOUS"
	KindMissingRequiredParameter Kind = "MISSING_REQUIRED_PARAMETER"
	KindWorkerUnreachable        Kind = "WORKER_UNREACHABLE"
	KindWorkerProtocolViolation  Kind = "WORKER_PROTOCOL_VIOLATION"
	KindWorkerReportedFailure    Kind = "WORKER_REPORTED_FAILURE"
)

// ErrWorkerOffline is returned without a network call when a recent health
// check found the worker offline.
var ErrWorkerOffline = errors.New("worker is offline")

// Error is a dispatch failure with enough detail for a caller to decide on a retry.
type Error struct {
	Kind     Kind
	WorkerID string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.WorkerID != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.WorkerID, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retriable reports whether the caller may resubmit the same request.
func (e *Error) Retriable() bool {
	return e.Kind == KindWorkerUnreachable
}

// Unreachable builds a WorkerUnreachable error.
func Unreachable(workerID string, err error) *Error {
	return &Error{Kind: KindWorkerUnreachable, WorkerID: workerID, Reason: reason(err, "worker unreachable"), Err: err}
}

// ProtocolViolation builds a WorkerProtocolViolation error.
func ProtocolViolation(workerID string, err error) *Error {
	return &Error{Kind: KindWorkerProtocolViolation, WorkerID: workerID, Reason: reason(err, "protocol violation"), Err: err}
}

// ReportedFailure builds a WorkerReportedFailure error.
func ReportedFailure(workerID, detail string) *Error {
	return &Error{Kind: KindWorkerReportedFailure, WorkerID: workerID, Reason: detail}
}

// KindOf returns the dispatch kind of err, or "" if err is not a dispatch error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func reason(err error, def string) string {
	if err == nil {
		return def
	}
	return err.Error()
}
