package models

// SessionStatus is the lifecycle state of a coaching session.
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusApproved  SessionStatus = "approved"
	StatusRejected  SessionStatus = "rejected"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

var allStatuses = []SessionStatus{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusCompleted,
	StatusCancelled,
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []SessionStatus {
	out := make([]SessionStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s SessionStatus) IsValid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsActive reports whether a session in this status holds its trainer slot.
func (s SessionStatus) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

// IsTerminal reports whether no further transition is defined from this status.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// HoldsRoom reports whether a session in this status carries a room id.
func (s SessionStatus) HoldsRoom() bool {
	return s == StatusApproved || s == StatusCompleted
}

func (s SessionStatus) String() string {
	return string(s)
}
