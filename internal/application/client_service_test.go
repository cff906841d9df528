package application

import (
	"context"
	"testing"

	"github.com/acornforum/oidc-store/internal/domain"
	apperrors "github.com/acornforum/oidc-store/internal/domain/errors"
	"github.com/acornforum/oidc-store/internal/infrastructure/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientService_Register(t *testing.T) {
	tests := []struct {
		name       string
		descriptor ClientDescriptor
		setupMock  func(*MockApplicationStore)
		checkErr   func(*testing.T, error)
	}{
		{
			name: "success public client",
			descriptor: ClientDescriptor{
				ClientID:     "forum-web",
				DisplayName:  "Forum Web",
				Type:         domain.ClientTypePublic,
				ConsentType:  domain.ConsentTypeExplicit,
				RedirectURIs: []string{"https://forum.example.com/callback"},
			},
			setupMock: func(m *MockApplicationStore) {
				m.On("FindByClientID", mock.Anything, "forum-web").Return(nil, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*domain.Application")).Return(nil)
			},
		},
		{
			name:       "missing client id",
			descriptor: ClientDescriptor{DisplayName: "No ID"},
			setupMock:  func(m *MockApplicationStore) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidationError(err))
			},
		},
		{
			name:       "missing display name",
			descriptor: ClientDescriptor{ClientID: "forum-web"},
			setupMock:  func(m *MockApplicationStore) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidationError(err))
			},
		},
		{
			name: "confidential client without secret",
			descriptor: ClientDescriptor{
				ClientID:    "forum-api",
				DisplayName: "Forum API",
				Type:        domain.ClientTypeConfidential,
			},
			setupMock: func(m *MockApplicationStore) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidationError(err))
			},
		},
		{
			name: "duplicate client id",
			descriptor: ClientDescriptor{
				ClientID:    "forum-web",
				DisplayName: "Forum Web",
				Type:        domain.ClientTypePublic,
			},
			setupMock: func(m *MockApplicationStore) {
				m.On("FindByClientID", mock.Anything, "forum-web").
					Return(domain.NewApplication(), nil)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsConflictError(err))
			},
		},
		{
			name: "duplicate surfaced by the store",
			descriptor: ClientDescriptor{
				ClientID:    "forum-web",
				DisplayName: "Forum Web",
				Type:        domain.ClientTypePublic,
			},
			setupMock: func(m *MockApplicationStore) {
				m.On("FindByClientID", mock.Anything, "forum-web").Return(nil, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*domain.Application")).
					Return(domain.ErrDuplicateClientID)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsConflictError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps := new(MockApplicationStore)
			tt.setupMock(apps)

			service := NewClientService(apps, zap.NewNop())
			app, err := service.Register(context.Background(), tt.descriptor)

			if tt.checkErr != nil {
				require.Error(t, err)
				tt.checkErr(t, err)
				assert.Nil(t, app)
			} else {
				require.NoError(t, err)
				require.NotNil(t, app)
				assert.Equal(t, tt.descriptor.ClientID, app.ClientID)
			}
			apps.AssertExpectations(t)
		})
	}
}

func TestClientService_Register_HashesSecret(t *testing.T) {
	apps := new(MockApplicationStore)
	var created *domain.Application
	apps.On("FindByClientID", mock.Anything, "forum-api").Return(nil, nil)
	apps.On("Create", mock.Anything, mock.AnythingOfType("*domain.Application")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Application)
		}).Return(nil)

	service := NewClientService(apps, zap.NewNop())
	_, err := service.Register(context.Background(), ClientDescriptor{
		ClientID:     "forum-api",
		DisplayName:  "Forum API",
		Type:         domain.ClientTypeConfidential,
		ClientSecret: "super-secret",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, created.ClientSecret)

	// Plaintext never reaches the store.
	assert.NotEqual(t, "super-secret", *created.ClientSecret)
	assert.NoError(t, secret.Verify("super-secret", *created.ClientSecret))
}

func TestClientService_VerifySecret(t *testing.T) {
	hashed, err := secret.Hash("super-secret")
	require.NoError(t, err)

	app := domain.NewApplication()
	app.ClientID = "forum-api"
	app.SetClientSecret(hashed)

	apps := new(MockApplicationStore)
	apps.On("FindByClientID", mock.Anything, "forum-api").Return(app, nil)
	apps.On("FindByClientID", mock.Anything, "ghost").Return(nil, nil)

	service := NewClientService(apps, zap.NewNop())

	assert.NoError(t, service.VerifySecret(context.Background(), "forum-api", "super-secret"))
	assert.ErrorIs(t, service.VerifySecret(context.Background(), "forum-api", "wrong"), domain.ErrInvalidSecret)
	assert.ErrorIs(t, service.VerifySecret(context.Background(), "ghost", "anything"), domain.ErrInvalidSecret)
}

func TestClientService_ResetSecret(t *testing.T) {
	app := domain.NewApplication()
	app.ClientID = "forum-api"

	apps := new(MockApplicationStore)
	apps.On("FindByClientID", mock.Anything, "forum-api").Return(app, nil)
	apps.On("FindByClientID", mock.Anything, "ghost").Return(nil, nil)
	apps.On("Update", mock.Anything, app).Return(nil)

	service := NewClientService(apps, zap.NewNop())

	require.NoError(t, service.ResetSecret(context.Background(), "forum-api", "rotated"))
	require.NotNil(t, app.ClientSecret)
	assert.NoError(t, secret.Verify("rotated", *app.ClientSecret))
	assert.NotNil(t, app.ModifyTime)

	err := service.ResetSecret(context.Background(), "ghost", "rotated")
	assert.True(t, apperrors.IsNotFoundError(err))

	err = service.ResetSecret(context.Background(), "forum-api", "")
	assert.True(t, apperrors.IsValidationError(err))
}
