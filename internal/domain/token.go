package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Token types understood by the authorization-server runtime.
const (
	TokenTypeAuthorizationCode = "authorization_code"
	TokenTypeAccessToken       = "access_token"
	TokenTypeRefreshToken      = "refresh_token"
	TokenTypeIDToken           = "id_token"
)

// Token is a durable record of an issued authorization code, access token,
// refresh token or id token. Payload is stored verbatim and never parsed by
// the store.
type Token struct {
	ID              int64
	ApplicationID   int64
	AuthorizationID *int64
	Subject         string
	Type            string
	Status          Status
	ReferenceID     *string
	Payload         string
	Properties      map[string]json.RawMessage
	CreateTime      time.Time
	ExpirationTime  *time.Time
	RedemptionTime  *time.Time
}

// NewToken returns a token with defaults applied.
func NewToken() *Token {
	return &Token{
		Properties: map[string]json.RawMessage{},
		CreateTime: time.Now(),
	}
}

// NewReferenceID mints an opaque external lookup key for reference-style
// tokens. ULIDs are used so reference ids sort by issuance time.
func NewReferenceID() string {
	return ulid.Make().String()
}

// SetStatus moves the token to next, rejecting any transition that would
// reactivate a terminal status.
func (t *Token) SetStatus(next Status) error {
	if !t.Status.CanTransition(next) {
		return ErrInvalidStatusTransition
	}
	t.Status = next
	return nil
}

// SetRedemptionTime records when an authorization code was exchanged. The
// redemption time is set exactly once and never cleared.
func (t *Token) SetRedemptionTime(at time.Time) error {
	if t.RedemptionTime != nil {
		return ErrRedemptionTimeSet
	}
	t.RedemptionTime = &at
	return nil
}

// SetReferenceID stores the reference id, normalizing the empty string to absent.
func (t *Token) SetReferenceID(id string) {
	if id == "" {
		t.ReferenceID = nil
		return
	}
	t.ReferenceID = &id
}

// SetAuthorizationID links the token to an authorization by its string
// identifier. An unparsable identifier clears the link.
func (t *Token) SetAuthorizationID(identifier string) {
	if id, ok := ParseID(identifier); ok {
		t.AuthorizationID = &id
		return
	}
	t.AuthorizationID = nil
}

// Expired reports whether the token has an expiration time in the past.
// Tokens without an expiration never expire.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpirationTime != nil && t.ExpirationTime.Before(now)
}

// TokenFilter is the composite filter shared by the find and revoke paths.
// Zero-valued fields are not applied. Client is an external client id,
// resolved against the application table once per call.
type TokenFilter struct {
	Subject string
	Client  string
	Status  Status
	Type    string
}

// TokenQuery filters and projects the fully materialized token set.
type TokenQuery func(tokens []*Token, state any) []any

// TokenStore is the persistence contract the authorization-server runtime
// consumes for issued tokens.
type TokenStore interface {
	Count(ctx context.Context) (int64, error)
	CountBy(ctx context.Context, pred func(*Token) bool) (int64, error)

	FindByID(ctx context.Context, identifier string) (*Token, error)
	FindByReferenceID(ctx context.Context, referenceID string) (*Token, error)
	Find(ctx context.Context, filter TokenFilter) ([]*Token, error)
	FindByApplicationID(ctx context.Context, identifier string) ([]*Token, error)
	FindByAuthorizationID(ctx context.Context, identifier string) ([]*Token, error)
	FindBySubject(ctx context.Context, subject string) ([]*Token, error)

	List(ctx context.Context, limit, offset int) ([]*Token, error)
	Query(ctx context.Context, query TokenQuery, state any) ([]any, error)
	QueryOne(ctx context.Context, query TokenQuery, state any) (any, error)

	Create(ctx context.Context, token *Token) error
	Update(ctx context.Context, token *Token) error
	Delete(ctx context.Context, token *Token) error
	Instantiate(ctx context.Context) (*Token, error)

	// Revoke flips every matching row to Revoked and returns the number of
	// rows affected. The filter semantics are identical to Find.
	Revoke(ctx context.Context, filter TokenFilter) (int64, error)
	RevokeBySubject(ctx context.Context, subject string) (int64, error)
	RevokeByApplicationID(ctx context.Context, identifier string) (int64, error)
	RevokeByAuthorizationID(ctx context.Context, identifier string) (int64, error)

	// Prune deletes rows whose expiration time is set and before threshold
	// and whose status is not Valid. Non-expiring tokens are never pruned.
	Prune(ctx context.Context, threshold time.Time) (int64, error)
}
