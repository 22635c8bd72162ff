package newsletter

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a newsletter
type Status string

const (
	StatusNotSent  Status = "Not Sent"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusSent     Status = "sent"
	StatusDeclined Status = "declined"
)

var transitions = map[Status][]Status{
	StatusNotSent:  {StatusPending},
	StatusPending:  {StatusApproved, StatusDeclined},
	StatusDeclined: {StatusPending},
	StatusApproved: {StatusSent},
}

// ParseStatus accepts wire values case-insensitively; "draft" is an alias of "Not Sent"
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "not sent", "not_sent", "notsent", "draft":
		return StatusNotSent, nil
	case "pending":
		return StatusPending, nil
	case "approved":
		return StatusApproved, nil
	case "sent":
		return StatusSent, nil
	case "declined":
		return StatusDeclined, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, value)
}

// CanTransitionTo reports whether a PATCH may move s to next. Staying put is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanSend reports whether the distribution path may mark the newsletter sent
func (s Status) CanSend() bool {
	return s != StatusDeclined
}

func (s Status) String() string {
	return string(s)
}
