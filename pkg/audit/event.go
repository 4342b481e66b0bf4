// Package audit records controller-wiring changes made through newtmn.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Operation names recorded by the CLI.
const (
	OpConnect    = "controllers.connect"
	OpDisconnect = "controllers.disconnect"
	OpSnapshot   = "snapshot.push"
	OpClear      = "snapshot.clear"
)

// Event is one audited operation against a switch.
type Event struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	User        string        `json:"user"`
	Lab         string        `json:"lab,omitempty"`
	Switch      string        `json:"switch"`
	Operation   string        `json:"operation"`
	Controllers []string      `json:"controllers,omitempty"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Switch      string
	User        string
	Operation   string
	Controller  string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int // most recent matches to keep; 0 keeps all
	Offset      int // most recent matches to skip before Limit applies
}

// NewEvent creates an event stamped with a fresh id and the current time.
func NewEvent(user, sw, operation string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User:      user,
		Switch:    sw,
		Operation: operation,
	}
}

// WithLab sets the lab name
func (e *Event) WithLab(lab string) *Event {
	e.Lab = lab
	return e
}

// WithControllers records the controllers involved, in the order given.
func (e *Event) WithControllers(names ...string) *Event {
	e.Controllers = append([]string(nil), names...)
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	e.Error = ""
	return e
}

// WithError marks the event as failed. A nil error marks it successful.
func (e *Event) WithError(err error) *Event {
	if err == nil {
		return e.WithSuccess()
	}
	e.Success = false
	e.Error = err.Error()
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func (e *Event) hasController(name string) bool {
	for _, c := range e.Controllers {
		if c == name {
			return true
		}
	}
	return false
}
