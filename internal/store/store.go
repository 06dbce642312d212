// Package store records the mail an epistle run handled.
package store

import "nickandperla.net/epistle/internal/mail"

// Status is what happened to a mail on delivery.
type Status int

const (
	// Delivered mail reached a user that handled it.
	Delivered Status = iota
	// Dropped mail was addressed to a missing server or user.
	Dropped
	// Unmatched mail reached a user but no reaction pattern matched.
	Unmatched
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Dropped:
		return "dropped"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "delivered":
		return Delivered, true
	case "dropped":
		return Dropped, true
	case "unmatched":
		return Unmatched, true
	default:
		return Delivered, false
	}
}

// Entry is one journaled delivery.
type Entry struct {
	Tick   int
	Status Status
	Mail   mail.Mail
}

// Journal is the interface for delivery persistence.
type Journal interface {
	// Append records an entry.
	Append(e Entry) error
	// Entries returns every entry in the order it was appended.
	Entries() ([]Entry, error)
	// Close releases resources.
	Close() error
}

// Filter returns the entries with the given status.
func Filter(entries []Entry, status Status) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}
