package application

import (
	"context"
	"time"

	"github.com/acornforum/oidc-store/internal/domain"
	apperrors "github.com/acornforum/oidc-store/internal/domain/errors"
	"github.com/acornforum/oidc-store/internal/infrastructure/secret"
	"go.uber.org/zap"
)

// ClientDescriptor describes a client registration request.
type ClientDescriptor struct {
	ClientID               string
	DisplayName            string
	ClientSecret           string
	Type                   string
	ConsentType            string
	Description            string
	RedirectURIs           []string
	PostLogoutRedirectURIs []string
	Permissions            []string
	Requirements           []string
}

// ClientService registers and maintains OAuth clients on top of the
// application store. Confidential-client secrets are bcrypt-hashed before
// they reach a row; the plaintext is never persisted.
type ClientService struct {
	apps   domain.ApplicationStore
	logger *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(apps domain.ApplicationStore, logger *zap.Logger) *ClientService {
	return &ClientService{
		apps:   apps,
		logger: logger,
	}
}

// Register validates the descriptor and persists a new application.
func (s *ClientService) Register(ctx context.Context, d ClientDescriptor) (*domain.Application, error) {
	if d.ClientID == "" {
		return nil, apperrors.NewValidationError("client id is required")
	}
	if d.DisplayName == "" {
		return nil, apperrors.NewValidationError("display name is required")
	}
	if d.Type == domain.ClientTypeConfidential && d.ClientSecret == "" {
		return nil, apperrors.NewValidationError("confidential clients require a secret")
	}

	existing, err := s.apps.FindByClientID(ctx, d.ClientID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check client id", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("client id already registered")
	}

	app := domain.NewApplication()
	app.ClientID = d.ClientID
	app.DisplayName = d.DisplayName
	app.Type = d.Type
	app.ConsentType = d.ConsentType
	app.SetDescription(d.Description)
	if len(d.RedirectURIs) > 0 {
		app.RedirectURIs = d.RedirectURIs
	}
	if len(d.PostLogoutRedirectURIs) > 0 {
		app.PostLogoutRedirectURIs = d.PostLogoutRedirectURIs
	}
	if len(d.Permissions) > 0 {
		app.Permissions = d.Permissions
	}
	if len(d.Requirements) > 0 {
		app.Requirements = d.Requirements
	}

	if d.ClientSecret != "" {
		hashed, err := secret.Hash(d.ClientSecret)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to hash client secret", err)
		}
		app.SetClientSecret(hashed)
	}

	if err := s.apps.Create(ctx, app); err != nil {
		if err == domain.ErrDuplicateClientID {
			return nil, apperrors.NewConflictError("client id already registered")
		}
		return nil, apperrors.NewInternalError("failed to create client", err)
	}

	s.logger.Info("registered client", zap.String("client_id", app.ClientID))
	return app, nil
}

// VerifySecret checks a presented secret against the stored hash.
func (s *ClientService) VerifySecret(ctx context.Context, clientID, presented string) error {
	app, err := s.apps.FindByClientID(ctx, clientID)
	if err != nil {
		return apperrors.NewInternalError("failed to find client", err)
	}
	if app == nil || app.ClientSecret == nil {
		return domain.ErrInvalidSecret
	}
	return secret.Verify(presented, *app.ClientSecret)
}

// ResetSecret replaces the client secret and stamps the modify time.
func (s *ClientService) ResetSecret(ctx context.Context, clientID, newSecret string) error {
	if newSecret == "" {
		return apperrors.NewValidationError("secret is required")
	}
	app, err := s.apps.FindByClientID(ctx, clientID)
	if err != nil {
		return apperrors.NewInternalError("failed to find client", err)
	}
	if app == nil {
		return apperrors.NewNotFoundError("client not found")
	}

	hashed, err := secret.Hash(newSecret)
	if err != nil {
		return apperrors.NewInternalError("failed to hash client secret", err)
	}
	app.SetClientSecret(hashed)
	now := time.Now()
	app.ModifyTime = &now

	if err := s.apps.Update(ctx, app); err != nil {
		return apperrors.NewInternalError("failed to update client", err)
	}
	s.logger.Info("reset client secret", zap.String("client_id", clientID))
	return nil
}
