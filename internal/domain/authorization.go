package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Authorization types (grant categories).
const (
	AuthorizationTypePermanent = "permanent"
	AuthorizationTypeAdHoc     = "ad-hoc"
)

// Authorization records that a subject granted a client a set of scopes.
// Scopes are a snapshot at grant time; revoking an authorization does not
// retroactively alter already-issued tokens.
type Authorization struct {
	ID            int64
	ApplicationID int64
	Subject       string
	Type          string
	Status        Status
	Scopes        []string
	Properties    map[string]json.RawMessage
	CreateTime    time.Time
}

// NewAuthorization returns an authorization with defaults applied.
func NewAuthorization() *Authorization {
	return &Authorization{
		Scopes:     []string{},
		Properties: map[string]json.RawMessage{},
		CreateTime: time.Now(),
	}
}

// SetStatus moves the authorization to next, rejecting any transition that
// would reactivate a terminal status.
func (a *Authorization) SetStatus(next Status) error {
	if !a.Status.CanTransition(next) {
		return ErrInvalidStatusTransition
	}
	a.Status = next
	return nil
}

// AuthorizationFilter is the composite filter shared by the find and revoke
// paths. Zero-valued fields are not applied. Client is an external client id,
// resolved against the application table once per call.
type AuthorizationFilter struct {
	Subject string
	Client  string
	Status  Status
	Type    string
	Scopes  []string
}

// AuthorizationQuery filters and projects the fully materialized
// authorization set. The store applies it in memory.
type AuthorizationQuery func(auths []*Authorization, state any) []any

// AuthorizationStore is the persistence contract the authorization-server
// runtime consumes for grant records.
type AuthorizationStore interface {
	Count(ctx context.Context) (int64, error)
	CountBy(ctx context.Context, pred func(*Authorization) bool) (int64, error)

	FindByID(ctx context.Context, identifier string) (*Authorization, error)
	Find(ctx context.Context, filter AuthorizationFilter) ([]*Authorization, error)
	FindByApplicationID(ctx context.Context, identifier string) ([]*Authorization, error)
	FindBySubject(ctx context.Context, subject string) ([]*Authorization, error)

	List(ctx context.Context, limit, offset int) ([]*Authorization, error)
	Query(ctx context.Context, query AuthorizationQuery, state any) ([]any, error)
	QueryOne(ctx context.Context, query AuthorizationQuery, state any) (any, error)

	Create(ctx context.Context, auth *Authorization) error
	Update(ctx context.Context, auth *Authorization) error
	Delete(ctx context.Context, auth *Authorization) error
	Instantiate(ctx context.Context) (*Authorization, error)

	// Revoke flips every matching row to Revoked and returns the number of
	// rows affected. The filter semantics are identical to Find.
	Revoke(ctx context.Context, filter AuthorizationFilter) (int64, error)
	RevokeBySubject(ctx context.Context, subject string) (int64, error)
	RevokeByApplicationID(ctx context.Context, identifier string) (int64, error)

	// Prune deletes rows created before threshold whose status is not Valid.
	// Valid rows are never pruned regardless of age.
	Prune(ctx context.Context, threshold time.Time) (int64, error)
}
