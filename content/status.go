package content

import (
	"strings"
)

// Status is the visibility of a post
type Status string

const (
	StatusPublic  Status = "PUBLIC"
	StatusPrivate Status = "PRIVATE"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPublic, StatusPrivate:
		return true
	default:
		return false
	}
}

// GetAllStatuses returns the accepted statuses
func GetAllStatuses() []Status {
	return []Status{StatusPublic, StatusPrivate}
}

// ParseStatus accepts a status name in any case
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", errorf(ErrInvalidStatus, "%s isn't in the status options", value).
			WithMetadata(map[string]any{"status": value})
	}
	return status, nil
}
