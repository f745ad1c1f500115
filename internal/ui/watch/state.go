package watch

import (
	"time"

	"slidesmith/pkg/admission"
)

// State captures the watch UI state between polls.
type State struct {
	Snapshot  admission.Snapshot
	HaveData  bool
	Polls     int
	UpdatedAt time.Time
	LastError string
	StartedAt time.Time
}

// apply folds a poll event into the state. A failed poll keeps the previous
// snapshot on screen and surfaces the error instead.
func (s State) apply(event Event) State {
	s.Polls++
	s.UpdatedAt = event.At
	if event.Err != nil {
		s.LastError = event.Err.Error()
		return s
	}
	s.LastError = ""
	s.Snapshot = event.Snapshot
	s.HaveData = true
	return s
}
