package events

import (
	"fmt"
	"time"
)

// Filter selects audit entries. Zero fields match everything; Since is
// inclusive and Until exclusive.
type Filter struct {
	AggregateType string
	AggregateID   string
	Types         []string
	Since         time.Time
	Until         time.Time
}

// Matches reports whether e passes every set field of f.
func (f Filter) Matches(e *BaseEvent) bool {
	if f.AggregateType != "" && e.AggregateType_ != f.AggregateType {
		return false
	}
	if f.AggregateID != "" && e.AggregateID_ != f.AggregateID {
		return false
	}
	if len(f.Types) > 0 && !contains(f.Types, e.Type) {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !e.Timestamp.Before(f.Until) {
		return false
	}
	return true
}

// OnDay limits f to the calendar day of day, in day's location.
func (f Filter) OnDay(day time.Time) Filter {
	y, m, d := day.Date()
	f.Since = time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	f.Until = f.Since.AddDate(0, 0, 1)
	return f
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Violation is one broken entry of the audit chain. Line is 1-based; Type and
// Subject are empty when the entry could not be read at all.
type Violation struct {
	Line    int
	EventID string
	Type    string
	Subject string
	Reason  string
}

func (v Violation) String() string {
	if v.Type == "" {
		return fmt.Sprintf("line %d: %s", v.Line, v.Reason)
	}
	return fmt.Sprintf("line %d, %s for %s: %s", v.Line, v.Type, v.Subject, v.Reason)
}

// EventStore persists the audit trail.
type EventStore interface {
	// Append chains the event to the previous entry and persists it.
	Append(event *BaseEvent) error

	// Query returns the matching entries, oldest first.
	Query(f Filter) ([]*BaseEvent, error)

	// Verify reports every entry that breaks the hash chain.
	Verify() ([]Violation, error)
}

// EventPublisher broadcasts events to subscribers.
type EventPublisher interface {
	Publish(event *BaseEvent) error
	Subscribe(handler EventHandler)
}

// EventHandler processes published events.
type EventHandler func(event *BaseEvent) error
