package util

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// FaultError is the host-side fatal-error channel: a fault with enough
// structured context to log before the embedding application aborts the call
// path. The guest never sees these; guest-facing failures travel as result
// words inside the reply.
type FaultError struct {
	Err     error
	Fields  map[string]any
	Context string
}

func NewFault(msg string, fields map[string]any, err error) *FaultError {
	return &FaultError{Context: msg, Fields: fields, Err: err}
}

func (e *FaultError) Error() string {
	if e.Err == nil {
		return e.Context
	}
	return fmt.Errorf("%s (%v): %w", e.Context, e.Fields, e.Err).Error()
}

func (e *FaultError) Unwrap() error {
	if e.Err == nil {
		return errors.New(e.Context)
	}
	return e.Err
}

func (e *FaultError) Log(l *logrus.Logger) {
	if e.Err != nil {
		l.WithFields(e.Fields).WithError(e.Err).Error(e.Context)
	} else {
		l.WithFields(e.Fields).Error(e.Context)
	}
}

// LogFault logs err through its FaultError context when it has one.
func LogFault(msg string, err error, l *logrus.Logger) {
	var fe *FaultError
	if errors.As(err, &fe) {
		fe.Log(l)
		return
	}
	l.WithError(err).Error(msg)
}
