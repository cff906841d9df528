package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Client types understood by the authorization-server runtime.
const (
	ClientTypeConfidential = "confidential"
	ClientTypePublic       = "public"
)

// Consent types understood by the authorization-server runtime.
const (
	ConsentTypeExplicit   = "explicit"
	ConsentTypeImplicit   = "implicit"
	ConsentTypeExternal   = "external"
	ConsentTypeSystematic = "systematic"
)

// Application is a registered OAuth2/OIDC client. Collection fields are
// decoded in memory; the store serializes them into text columns on write
// and decodes them leniently on read.
type Application struct {
	ID                     int64
	ClientID               string
	ClientSecret           *string
	ConsentType            string
	DisplayName            string
	Type                   string
	RedirectURIs           []string
	PostLogoutRedirectURIs []string
	Permissions            []string
	Requirements           []string
	Properties             map[string]json.RawMessage
	Description            *string
	CreateTime             time.Time
	ModifyTime             *time.Time
}

// NewApplication returns an application with defaults applied.
func NewApplication() *Application {
	return &Application{
		RedirectURIs:           []string{},
		PostLogoutRedirectURIs: []string{},
		Permissions:            []string{},
		Requirements:           []string{},
		Properties:             map[string]json.RawMessage{},
		CreateTime:             time.Now(),
	}
}

// SetClientSecret stores the secret, normalizing the empty string to absent.
func (a *Application) SetClientSecret(secret string) {
	if secret == "" {
		a.ClientSecret = nil
		return
	}
	a.ClientSecret = &secret
}

// SetDescription stores the description, normalizing the empty string to absent.
func (a *Application) SetDescription(description string) {
	if description == "" {
		a.Description = nil
		return
	}
	a.Description = &description
}

// Confidential reports whether the client is registered as confidential.
func (a *Application) Confidential() bool {
	return a.Type == ClientTypeConfidential
}

// ApplicationQuery filters and projects the fully materialized application
// set. The store applies it in memory; see ApplicationStore.Query.
type ApplicationQuery func(apps []*Application, state any) []any

// ApplicationStore is the persistence contract the authorization-server
// runtime consumes for registered clients. Identifier arguments are decimal
// string representations of the numeric id; malformed identifiers resolve
// to a nil result, never an error.
type ApplicationStore interface {
	Count(ctx context.Context) (int64, error)
	CountBy(ctx context.Context, pred func(*Application) bool) (int64, error)

	FindByID(ctx context.Context, identifier string) (*Application, error)
	FindByClientID(ctx context.Context, clientID string) (*Application, error)
	FindByRedirectURI(ctx context.Context, uri string) ([]*Application, error)
	FindByPostLogoutRedirectURI(ctx context.Context, uri string) ([]*Application, error)

	List(ctx context.Context, limit, offset int) ([]*Application, error)
	Query(ctx context.Context, query ApplicationQuery, state any) ([]any, error)
	QueryOne(ctx context.Context, query ApplicationQuery, state any) (any, error)

	Create(ctx context.Context, app *Application) error
	Update(ctx context.Context, app *Application) error
	Delete(ctx context.Context, app *Application) error
	Instantiate(ctx context.Context) (*Application, error)
}
