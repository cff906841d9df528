package domain

// Status is the lifecycle state of an authorization or token row. The
// authorization-server runtime exchanges statuses as plain strings; inside
// the stores they are kept as a typed value so illegal transitions can be
// rejected before they reach the database.
type Status string

const (
	// StatusValid marks a row as currently usable.
	StatusValid Status = "Valid"

	// StatusInactive marks a token the runtime has deactivated.
	StatusInactive Status = "Inactive"

	// StatusRevoked marks a row revoked by an explicit or cascaded revoke.
	StatusRevoked Status = "Revoked"

	// StatusRedeemed marks an authorization code that has been exchanged.
	StatusRedeemed Status = "Redeemed"
)

// Terminal reports whether the status permits no return to Valid.
func (s Status) Terminal() bool {
	switch s {
	case StatusInactive, StatusRevoked, StatusRedeemed:
		return true
	}
	return false
}

// CanTransition reports whether a row may move from s to next. Terminal
// states never reactivate; everything else is allowed, including moving
// between terminal states (a redeemed code can still be revoked).
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	if s.Terminal() && next == StatusValid {
		return false
	}
	return true
}

func (s Status) String() string {
	return string(s)
}
