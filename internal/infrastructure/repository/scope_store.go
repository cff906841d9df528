package repository

import (
	"context"
	"errors"

	"github.com/acornforum/oidc-store/internal/domain"
	"github.com/acornforum/oidc-store/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const scopeColumns = `id, name, display_name, description, resources, properties, create_time`

// PostgresScopeStore implements domain.ScopeStore using PostgreSQL
type PostgresScopeStore struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewScopeStore creates a new PostgresScopeStore
func NewScopeStore(db *database.Postgres, logger *zap.Logger) domain.ScopeStore {
	return &PostgresScopeStore{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresScopeStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM oidc_scopes").Scan(&count)
	if err != nil {
		s.logger.Error("failed to count scopes", zap.Error(err))
		return 0, domain.ErrDatabaseQuery
	}
	return count, nil
}

func (s *PostgresScopeStore) CountBy(ctx context.Context, pred func(*domain.Scope) bool) (int64, error) {
	if pred == nil {
		return 0, domain.ErrNilQuery
	}
	scopes, err := s.materialize(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, scope := range scopes {
		if pred(scope) {
			count++
		}
	}
	return count, nil
}

func (s *PostgresScopeStore) FindByID(ctx context.Context, identifier string) (*domain.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := domain.ParseID(identifier)
	if !ok {
		return nil, nil
	}
	row := s.db.QueryRow(ctx, "SELECT "+scopeColumns+" FROM oidc_scopes WHERE id = $1", id)
	return s.scanOne(row)
}

func (s *PostgresScopeStore) FindByName(ctx context.Context, name string) (*domain.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	row := s.db.QueryRow(ctx, "SELECT "+scopeColumns+" FROM oidc_scopes WHERE name = $1", name)
	return s.scanOne(row)
}

func (s *PostgresScopeStore) FindByNames(ctx context.Context, names []string) ([]*domain.Scope, error) {
	if len(names) == 0 {
		return []*domain.Scope{}, nil
	}
	nameSet := make(map[string]struct{}, len(names))
	for _, name := range names {
		nameSet[name] = struct{}{}
	}
	scopes, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}
	matches := []*domain.Scope{}
	for _, scope := range scopes {
		if _, ok := nameSet[scope.Name]; ok {
			matches = append(matches, scope)
		}
	}
	return matches, nil
}

// FindByResource linear-scans the scope set, keeping rows whose decoded
// resource list contains resource.
func (s *PostgresScopeStore) FindByResource(ctx context.Context, resource string) ([]*domain.Scope, error) {
	if resource == "" {
		return []*domain.Scope{}, nil
	}
	scopes, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}
	matches := []*domain.Scope{}
	for _, scope := range scopes {
		if containsString(scope.Resources, resource) {
			matches = append(matches, scope)
		}
	}
	return matches, nil
}

func (s *PostgresScopeStore) List(ctx context.Context, limit, offset int) ([]*domain.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := "SELECT " + scopeColumns + " FROM oidc_scopes ORDER BY id"
	args := []interface{}{}
	if offset > 0 {
		args = append(args, offset)
		query += " OFFSET $1"
	}
	if limit > 0 {
		args = append(args, limit)
		if len(args) == 2 {
			query += " LIMIT $2"
		} else {
			query += " LIMIT $1"
		}
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to list scopes", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresScopeStore) Query(ctx context.Context, query domain.ScopeQuery, state any) ([]any, error) {
	if query == nil {
		return nil, domain.ErrNilQuery
	}
	scopes, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}
	return query(scopes, state), nil
}

func (s *PostgresScopeStore) QueryOne(ctx context.Context, query domain.ScopeQuery, state any) (any, error) {
	results, err := s.Query(ctx, query, state)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (s *PostgresScopeStore) Create(ctx context.Context, scope *domain.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scope == nil {
		return domain.ErrNilEntity
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO oidc_scopes (name, display_name, description, resources, properties, create_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, scope.Name, scope.DisplayName, scope.Description,
		textColumn(serializeStringArray(scope.Resources)),
		textColumn(serializeProperties(scope.Properties)),
		scope.CreateTime,
	).Scan(&scope.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateScopeName
		}
		s.logger.Error("failed to create scope", zap.String("name", scope.Name), zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (s *PostgresScopeStore) Update(ctx context.Context, scope *domain.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scope == nil {
		return domain.ErrNilEntity
	}
	err := s.db.Exec(ctx, `
		UPDATE oidc_scopes
		SET name = $1, display_name = $2, description = $3, resources = $4, properties = $5
		WHERE id = $6
	`, scope.Name, scope.DisplayName, scope.Description,
		textColumn(serializeStringArray(scope.Resources)),
		textColumn(serializeProperties(scope.Properties)),
		scope.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateScopeName
		}
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (s *PostgresScopeStore) Delete(ctx context.Context, scope *domain.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scope == nil {
		return domain.ErrNilEntity
	}
	return s.db.Exec(ctx, "DELETE FROM oidc_scopes WHERE id = $1", scope.ID)
}

func (s *PostgresScopeStore) Instantiate(ctx context.Context) (*domain.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.NewScope(), nil
}

func (s *PostgresScopeStore) materialize(ctx context.Context) ([]*domain.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, "SELECT "+scopeColumns+" FROM oidc_scopes")
	if err != nil {
		s.logger.Error("failed to load scopes", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresScopeStore) scanAll(ctx context.Context, rows pgx.Rows) ([]*domain.Scope, error) {
	scopes := []*domain.Scope{}
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scope, err := scanScope(rows)
		if err != nil {
			s.logger.Error("failed to scan scope", zap.Error(err))
			return nil, domain.ErrDatabaseQuery
		}
		scopes = append(scopes, scope)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("failed to read scopes", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return scopes, nil
}

func (s *PostgresScopeStore) scanOne(row pgx.Row) (*domain.Scope, error) {
	scope, err := scanScope(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to scan scope", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return scope, nil
}

func scanScope(row pgx.Row) (*domain.Scope, error) {
	scope := &domain.Scope{}
	var resources, properties *string
	err := row.Scan(&scope.ID, &scope.Name, &scope.DisplayName, &scope.Description,
		&resources, &properties, &scope.CreateTime)
	if err != nil {
		return nil, err
	}
	scope.Resources = deserializeStringArray(columnText(resources))
	scope.Properties = deserializeProperties(columnText(properties))
	return scope, nil
}
