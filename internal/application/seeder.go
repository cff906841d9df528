package application

import (
	"context"

	"github.com/acornforum/oidc-store/internal/domain"
	"go.uber.org/zap"
)

// Seeder ensures the default scope and clients exist on startup. Every step
// is idempotent: existing rows are left untouched.
type Seeder struct {
	apps   domain.ApplicationStore
	scopes domain.ScopeStore
	logger *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(apps domain.ApplicationStore, scopes domain.ScopeStore, logger *zap.Logger) *Seeder {
	return &Seeder{
		apps:   apps,
		scopes: scopes,
		logger: logger,
	}
}

// Run seeds the API scope, the web client and the docs client.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.ensureAPIScope(ctx); err != nil {
		return err
	}
	if err := s.ensureWebClient(ctx); err != nil {
		return err
	}
	return s.ensureDocsClient(ctx)
}

func (s *Seeder) ensureAPIScope(ctx context.Context) error {
	existing, err := s.scopes.FindByName(ctx, "acorn-api")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	scope := domain.NewScope()
	scope.Name = "acorn-api"
	scope.DisplayName = "Acorn API"
	scope.Resources = []string{"acorn-api"}

	if err := s.scopes.Create(ctx, scope); err != nil {
		return err
	}
	s.logger.Info("seeded scope", zap.String("name", scope.Name))
	return nil
}

func (s *Seeder) ensureWebClient(ctx context.Context) error {
	existing, err := s.apps.FindByClientID(ctx, "acorn-client")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	app := domain.NewApplication()
	app.ClientID = "acorn-client"
	app.DisplayName = "Acorn Web Client"
	app.Type = domain.ClientTypePublic
	app.ConsentType = domain.ConsentTypeExplicit
	app.RedirectURIs = []string{"https://localhost:5000/oidc/callback"}
	app.PostLogoutRedirectURIs = []string{"https://localhost:5000"}
	app.Permissions = []string{
		domain.PermissionEndpointAuthorization,
		domain.PermissionEndpointToken,
		domain.PermissionGrantTypeAuthorizationCode,
		domain.PermissionGrantTypeRefreshToken,
		domain.PermissionResponseTypeCode,
		domain.PermissionPrefixScope + "openid",
		domain.PermissionPrefixScope + "profile",
		domain.PermissionPrefixScope + "offline_access",
		domain.PermissionPrefixScope + "acorn-api",
	}
	app.Requirements = []string{domain.RequirementPKCE}

	if err := s.apps.Create(ctx, app); err != nil {
		return err
	}
	s.logger.Info("seeded client", zap.String("client_id", app.ClientID))
	return nil
}

func (s *Seeder) ensureDocsClient(ctx context.Context) error {
	existing, err := s.apps.FindByClientID(ctx, "acorn-docs")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	app := domain.NewApplication()
	app.ClientID = "acorn-docs"
	app.DisplayName = "Acorn API Documentation"
	app.Type = domain.ClientTypePublic
	app.ConsentType = domain.ConsentTypeExplicit
	app.RedirectURIs = []string{"https://localhost:5000/docs/oauth2-callback"}
	app.Permissions = []string{
		domain.PermissionEndpointAuthorization,
		domain.PermissionEndpointToken,
		domain.PermissionGrantTypeAuthorizationCode,
		domain.PermissionResponseTypeCode,
		domain.PermissionPrefixScope + "openid",
		domain.PermissionPrefixScope + "acorn-api",
	}
	app.Requirements = []string{domain.RequirementPKCE}

	if err := s.apps.Create(ctx, app); err != nil {
		return err
	}
	s.logger.Info("seeded client", zap.String("client_id", app.ClientID))
	return nil
}
