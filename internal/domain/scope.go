package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Scope is a named permission unit, optionally tied to protected resources.
// Authorizations reference scopes by name, never by id; deleting a scope
// leaves historical scope snapshots untouched.
type Scope struct {
	ID          int64
	Name        string
	DisplayName string
	Description *string
	Resources   []string
	Properties  map[string]json.RawMessage
	CreateTime  time.Time
}

// NewScope returns a scope with defaults applied.
func NewScope() *Scope {
	return &Scope{
		Resources:  []string{},
		Properties: map[string]json.RawMessage{},
		CreateTime: time.Now(),
	}
}

// SetDescription stores the description, normalizing the empty string to absent.
func (s *Scope) SetDescription(description string) {
	if description == "" {
		s.Description = nil
		return
	}
	s.Description = &description
}

// ScopeQuery filters and projects the fully materialized scope set.
type ScopeQuery func(scopes []*Scope, state any) []any

// ScopeStore is the persistence contract the authorization-server runtime
// consumes for named scopes.
type ScopeStore interface {
	Count(ctx context.Context) (int64, error)
	CountBy(ctx context.Context, pred func(*Scope) bool) (int64, error)

	FindByID(ctx context.Context, identifier string) (*Scope, error)
	FindByName(ctx context.Context, name string) (*Scope, error)
	FindByNames(ctx context.Context, names []string) ([]*Scope, error)
	FindByResource(ctx context.Context, resource string) ([]*Scope, error)

	List(ctx context.Context, limit, offset int) ([]*Scope, error)
	Query(ctx context.Context, query ScopeQuery, state any) ([]any, error)
	QueryOne(ctx context.Context, query ScopeQuery, state any) (any, error)

	Create(ctx context.Context, scope *Scope) error
	Update(ctx context.Context, scope *Scope) error
	Delete(ctx context.Context, scope *Scope) error
	Instantiate(ctx context.Context) (*Scope, error)
}
