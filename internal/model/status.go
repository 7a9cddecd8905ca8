package model

// Status is the delivery state of an order. It is persisted as text.
//
// Any status may follow any other; the store does not enforce an order
// of transitions.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusInPreparation Status = "IN_PREPARATION"
	StatusInDelivery    Status = "IN_DELIVERY"
	StatusDelivered     Status = "DELIVERED"
)

var statusLabels = map[Status]string{
	StatusPending:       "Pending",
	StatusInPreparation: "In preparation",
	StatusInDelivery:    "In delivery",
	StatusDelivered:     "Delivered",
}

// Statuses returns every status in delivery order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInPreparation, StatusInDelivery, StatusDelivered}
}

// ParseStatus maps a persisted or user-supplied value to a Status.
// The second result is false for anything outside the closed set.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusLabels[st]
	return st, ok
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the human-readable name shown on the tracking screen.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
