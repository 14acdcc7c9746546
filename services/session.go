package services

import (
	"errors"
	"go-places/models"
	"sync/atomic"
)

var ErrNotIngested = errors.New("annotations can only be added after ingestion started")

// SessionState is the per-session ingestion state. The flag is safe from any
// goroutine; the annotation list and last error belong to the session's main
// queue.
type SessionState struct {
	hasIngested atomic.Bool
	annotations []*models.Annotation
	lastError   error
}

func NewSessionState() *SessionState {
	return &SessionState{}
}

func (s *SessionState) HasIngested() bool {
	return s.hasIngested.Load()
}

// MarkIngested flips the flag and reports whether this call was the one that
// flipped it.
func (s *SessionState) MarkIngested() bool {
	return s.hasIngested.CompareAndSwap(false, true)
}

func (s *SessionState) Append(a *models.Annotation) error {
	if !s.HasIngested() {
		return ErrNotIngested
	}
	s.annotations = append(s.annotations, a)
	return nil
}

// KnownAnnotations returns the annotations in arrival order.
func (s *SessionState) KnownAnnotations() []*models.Annotation {
	return append([]*models.Annotation(nil), s.annotations...)
}

func (s *SessionState) LastError() error {
	return s.lastError
}

func (s *SessionState) recordFailure(err error) {
	s.lastError = err
}
