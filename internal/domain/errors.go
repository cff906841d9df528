package domain

import "errors"

var (
	// ErrNilEntity is returned when a nil entity is passed to Create, Update or Delete
	ErrNilEntity = errors.New("nil entity")

	// ErrNilQuery is returned when a nil projection is passed to a query operation
	ErrNilQuery = errors.New("nil query")

	// ErrDuplicateClientID is returned when a client id is already registered
	ErrDuplicateClientID = errors.New("client id already registered")

	// ErrDuplicateScopeName is returned when a scope name is already registered
	ErrDuplicateScopeName = errors.New("scope name already registered")

	// ErrDuplicateReferenceID is returned when a token reference id is already in use
	ErrDuplicateReferenceID = errors.New("reference id already in use")

	// ErrInvalidStatusTransition is returned when a terminal status would be reactivated
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrRedemptionTimeSet is returned when a redemption time would be overwritten
	ErrRedemptionTimeSet = errors.New("redemption time already set")

	// ErrInvalidSecret is returned when a presented client secret does not match
	ErrInvalidSecret = errors.New("invalid client secret")

	// ErrDatabaseQuery is returned when a database operation fails
	ErrDatabaseQuery = errors.New("database query failed")
)
