package services

// Reason explains why an operation left state untouched. Clients never see it;
// it is logged and asserted on in tests.
type Reason string

const (
	ReasonUnbound             Reason = "client_unbound"
	ReasonStaleSocket         Reason = "stale_socket"
	ReasonUnknownSeat         Reason = "unknown_seat"
	ReasonSeatOccupied        Reason = "seat_occupied"
	ReasonInvalidUsername     Reason = "invalid_username"
	ReasonNoSeat              Reason = "no_seat_held"
	ReasonUnknownItem         Reason = "unknown_item"
	ReasonInsufficientBalance Reason = "insufficient_balance"
	ReasonOrderNotFound       Reason = "order_not_found"
)

// Result is the outcome of a manager operation: accepted, or rejected with a Reason.
type Result struct {
	Reason Reason
}

func (r Result) OK() bool { return r.Reason == "" }

func (r Result) String() string {
	if r.OK() {
		return "accepted"
	}
	return "rejected: " + string(r.Reason)
}

func accepted() Result { return Result{} }

func rejected(reason Reason) Result { return Result{Reason: reason} }
