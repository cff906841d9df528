package application

import (
	"context"

	"github.com/acornforum/oidc-store/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockApplicationStore is a mock implementation of domain.ApplicationStore
type MockApplicationStore struct {
	mock.Mock
}

func (m *MockApplicationStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApplicationStore) CountBy(ctx context.Context, pred func(*domain.Application) bool) (int64, error) {
	args := m.Called(ctx, pred)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApplicationStore) FindByID(ctx context.Context, identifier string) (*domain.Application, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationStore) FindByClientID(ctx context.Context, clientID string) (*domain.Application, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationStore) FindByRedirectURI(ctx context.Context, uri string) ([]*domain.Application, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Application), args.Error(1)
}

func (m *MockApplicationStore) FindByPostLogoutRedirectURI(ctx context.Context, uri string) ([]*domain.Application, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Application), args.Error(1)
}

func (m *MockApplicationStore) List(ctx context.Context, limit, offset int) ([]*domain.Application, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Application), args.Error(1)
}

func (m *MockApplicationStore) Query(ctx context.Context, query domain.ApplicationQuery, state any) ([]any, error) {
	args := m.Called(ctx, query, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

func (m *MockApplicationStore) QueryOne(ctx context.Context, query domain.ApplicationQuery, state any) (any, error) {
	args := m.Called(ctx, query, state)
	return args.Get(0), args.Error(1)
}

func (m *MockApplicationStore) Create(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationStore) Update(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationStore) Delete(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationStore) Instantiate(ctx context.Context) (*domain.Application, error) {
	args := m.Called(ctx)
	return args.Get(0).(*domain.Application), args.Error(1)
}

// MockScopeStore is a mock implementation of domain.ScopeStore
type MockScopeStore struct {
	mock.Mock
}

func (m *MockScopeStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScopeStore) CountBy(ctx context.Context, pred func(*domain.Scope) bool) (int64, error) {
	args := m.Called(ctx, pred)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScopeStore) FindByID(ctx context.Context, identifier string) (*domain.Scope, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scope), args.Error(1)
}

func (m *MockScopeStore) FindByName(ctx context.Context, name string) (*domain.Scope, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scope), args.Error(1)
}

func (m *MockScopeStore) FindByNames(ctx context.Context, names []string) ([]*domain.Scope, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Scope), args.Error(1)
}

func (m *MockScopeStore) FindByResource(ctx context.Context, resource string) ([]*domain.Scope, error) {
	args := m.Called(ctx, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Scope), args.Error(1)
}

func (m *MockScopeStore) List(ctx context.Context, limit, offset int) ([]*domain.Scope, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Scope), args.Error(1)
}

func (m *MockScopeStore) Query(ctx context.Context, query domain.ScopeQuery, state any) ([]any, error) {
	args := m.Called(ctx, query, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

func (m *MockScopeStore) QueryOne(ctx context.Context, query domain.ScopeQuery, state any) (any, error) {
	args := m.Called(ctx, query, state)
	return args.Get(0), args.Error(1)
}

func (m *MockScopeStore) Create(ctx context.Context, scope *domain.Scope) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

func (m *MockScopeStore) Update(ctx context.Context, scope *domain.Scope) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

func (m *MockScopeStore) Delete(ctx context.Context, scope *domain.Scope) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

func (m *MockScopeStore) Instantiate(ctx context.Context) (*domain.Scope, error) {
	args := m.Called(ctx)
	return args.Get(0).(*domain.Scope), args.Error(1)
}
