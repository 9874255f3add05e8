package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "PENDING"
	StatusApproved   BookingStatus = "APPROVED"
	StatusDeposited  BookingStatus = "DEPOSITED"
	StatusContracted BookingStatus = "CONTRACTED"
	StatusCompleted  BookingStatus = "COMPLETED"
	StatusCancelled  BookingStatus = "CANCELLED"
	StatusRefunded   BookingStatus = "REFUNDED"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusApproved, StatusCancelled},
	StatusApproved:   {StatusDeposited, StatusCancelled},
	StatusDeposited:  {StatusContracted, StatusCancelled, StatusRefunded},
	StatusContracted: {StatusCompleted, StatusCancelled, StatusRefunded},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusApproved,
	StatusDeposited,
	StatusContracted,
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
}

// IsValidStatusTransition reports whether from → to is listed in the table.
func IsValidStatusTransition(from, to BookingStatus) bool {
	return from.CanTransitionTo(to)
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable in one step, for UI population.
func (s BookingStatus) NextStatuses() []BookingStatus {
	allowed := validTransitions[s]
	out := make([]BookingStatus, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsActive reports whether a booking in this status still holds its property.
func (s BookingStatus) IsActive() bool {
	return s.IsValid() && !s.IsTerminal()
}

// CanBeCancelled returns true if the booking can be cancelled from this status.
func (s BookingStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// ActiveStatuses returns the non-terminal statuses.
func ActiveStatuses() []BookingStatus {
	out := make([]BookingStatus, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	return out
}
