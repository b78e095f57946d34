// Package notification turns detected catalog changes into push notifications
// and delivers them.
package notification

import (
	"context"
	"encoding/json"
)

// Priority is the ordered importance of a notification.
type Priority int

const (
	PriorityMin Priority = iota + 1
	PriorityLow
	PriorityDefault
	PriorityHigh
	PriorityMax
	// PriorityUrgent shares the top wire value with PriorityMax but is kept apart so
	// styles can tell them apart.
	PriorityUrgent
)

var priorityNames = map[Priority]string{
	PriorityMin:     "min",
	PriorityLow:     "low",
	PriorityDefault: "default",
	PriorityHigh:    "high",
	PriorityMax:     "max",
	PriorityUrgent:  "urgent",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "default"
}

// Wire returns the numeric priority understood by ntfy (1..5).
func (p Priority) Wire() int {
	switch {
	case p < PriorityMin:
		return int(PriorityDefault)
	case p > PriorityMax:
		return int(PriorityMax)
	default:
		return int(p)
	}
}

// MarshalJSON encodes the priority as its wire value.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Wire())
}

// Notification is a rendered, channel-independent message.
type Notification struct {
	Title    string
	Message  string
	Priority Priority
	Tags     []string
	Click    string
}

// Notifier delivers a notification to one destination.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
