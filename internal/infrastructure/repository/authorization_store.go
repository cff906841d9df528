package repository

import (
	"context"
	"errors"
	"time"

	"github.com/acornforum/oidc-store/internal/domain"
	"github.com/acornforum/oidc-store/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const authorizationColumns = `id, application_id, subject, auth_type, status, scopes, properties, create_time`

// PostgresAuthorizationStore implements domain.AuthorizationStore using PostgreSQL
type PostgresAuthorizationStore struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewAuthorizationStore creates a new PostgresAuthorizationStore
func NewAuthorizationStore(db *database.Postgres, logger *zap.Logger) domain.AuthorizationStore {
	return &PostgresAuthorizationStore{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresAuthorizationStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM oidc_authorizations").Scan(&count)
	if err != nil {
		s.logger.Error("failed to count authorizations", zap.Error(err))
		return 0, domain.ErrDatabaseQuery
	}
	return count, nil
}

func (s *PostgresAuthorizationStore) CountBy(ctx context.Context, pred func(*domain.Authorization) bool) (int64, error) {
	if pred == nil {
		return 0, domain.ErrNilQuery
	}
	auths, err := s.materialize(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, auth := range auths {
		if pred(auth) {
			count++
		}
	}
	return count, nil
}

func (s *PostgresAuthorizationStore) FindByID(ctx context.Context, identifier string) (*domain.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := domain.ParseID(identifier)
	if !ok {
		return nil, nil
	}
	row := s.db.QueryRow(ctx, "SELECT "+authorizationColumns+" FROM oidc_authorizations WHERE id = $1", id)
	return s.scanOne(row)
}

// Find returns every authorization matching all supplied filter fields. The
// client filter is resolved against the application table once, then matched
// by numeric id per row.
func (s *PostgresAuthorizationStore) Find(ctx context.Context, filter domain.AuthorizationFilter) ([]*domain.Authorization, error) {
	auths, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}

	appID, resolved := int64(0), true
	if filter.Client != "" {
		appID, resolved, err = resolveClientID(ctx, s.db, filter.Client)
		if err != nil {
			s.logger.Error("failed to resolve client id", zap.String("client", filter.Client), zap.Error(err))
			return nil, domain.ErrDatabaseQuery
		}
	}

	matches := []*domain.Authorization{}
	if filter.Client != "" && !resolved {
		// Unknown client resolves to zero rows, not an error.
		return matches, nil
	}
	for _, auth := range auths {
		if !matchesAuthorization(auth, filter, appID) {
			continue
		}
		matches = append(matches, auth)
	}
	return matches, nil
}

func matchesAuthorization(auth *domain.Authorization, filter domain.AuthorizationFilter, appID int64) bool {
	if filter.Subject != "" && auth.Subject != filter.Subject {
		return false
	}
	if filter.Status != "" && auth.Status != filter.Status {
		return false
	}
	if filter.Type != "" && auth.Type != filter.Type {
		return false
	}
	if len(filter.Scopes) > 0 && !scopesContainAll(auth.Scopes, filter.Scopes) {
		return false
	}
	if filter.Client != "" && auth.ApplicationID != appID {
		return false
	}
	return true
}

func (s *PostgresAuthorizationStore) FindByApplicationID(ctx context.Context, identifier string) ([]*domain.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	appID, ok := domain.ParseID(identifier)
	if !ok {
		return []*domain.Authorization{}, nil
	}
	rows, err := s.db.Query(ctx, "SELECT "+authorizationColumns+" FROM oidc_authorizations WHERE application_id = $1", appID)
	if err != nil {
		s.logger.Error("failed to find authorizations by application", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresAuthorizationStore) FindBySubject(ctx context.Context, subject string) ([]*domain.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if subject == "" {
		return []*domain.Authorization{}, nil
	}
	rows, err := s.db.Query(ctx, "SELECT "+authorizationColumns+" FROM oidc_authorizations WHERE subject = $1", subject)
	if err != nil {
		s.logger.Error("failed to find authorizations by subject", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresAuthorizationStore) List(ctx context.Context, limit, offset int) ([]*domain.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := "SELECT " + authorizationColumns + " FROM oidc_authorizations ORDER BY id"
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
		s.logger.Error("failed to list authorizations", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresAuthorizationStore) Query(ctx context.Context, query domain.AuthorizationQuery, state any) ([]any, error) {
	if query == nil {
		return nil, domain.ErrNilQuery
	}
	auths, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}
	return query(auths, state), nil
}

func (s *PostgresAuthorizationStore) QueryOne(ctx context.Context, query domain.AuthorizationQuery, state any) (any, error) {
	results, err := s.Query(ctx, query, state)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (s *PostgresAuthorizationStore) Create(ctx context.Context, auth *domain.Authorization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if auth == nil {
		return domain.ErrNilEntity
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO oidc_authorizations (application_id, subject, auth_type, status, scopes, properties, create_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, auth.ApplicationID, auth.Subject, auth.Type, auth.Status.String(),
		textColumn(serializeStringArray(auth.Scopes)),
		textColumn(serializeProperties(auth.Properties)),
		auth.CreateTime,
	).Scan(&auth.ID)
	if err != nil {
		s.logger.Error("failed to create authorization", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (s *PostgresAuthorizationStore) Update(ctx context.Context, auth *domain.Authorization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if auth == nil {
		return domain.ErrNilEntity
	}
	return s.db.Exec(ctx, `
		UPDATE oidc_authorizations
		SET application_id = $1, subject = $2, auth_type = $3, status = $4, scopes = $5, properties = $6
		WHERE id = $7
	`, auth.ApplicationID, auth.Subject, auth.Type, auth.Status.String(),
		textColumn(serializeStringArray(auth.Scopes)),
		textColumn(serializeProperties(auth.Properties)),
		auth.ID)
}

func (s *PostgresAuthorizationStore) Delete(ctx context.Context, auth *domain.Authorization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if auth == nil {
		return domain.ErrNilEntity
	}
	return s.db.Exec(ctx, "DELETE FROM oidc_authorizations WHERE id = $1", auth.ID)
}

func (s *PostgresAuthorizationStore) Instantiate(ctx context.Context) (*domain.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.NewAuthorization(), nil
}

// Revoke applies the composite filter exactly as Find does, then flips every
// match to Revoked in one bulk update.
func (s *PostgresAuthorizationStore) Revoke(ctx context.Context, filter domain.AuthorizationFilter) (int64, error) {
	matches, err := s.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	return s.revokeRows(ctx, matches)
}

func (s *PostgresAuthorizationStore) RevokeBySubject(ctx context.Context, subject string) (int64, error) {
	if subject == "" {
		return 0, nil
	}
	matches, err := s.FindBySubject(ctx, subject)
	if err != nil {
		return 0, err
	}
	return s.revokeRows(ctx, matches)
}

func (s *PostgresAuthorizationStore) RevokeByApplicationID(ctx context.Context, identifier string) (int64, error) {
	matches, err := s.FindByApplicationID(ctx, identifier)
	if err != nil {
		return 0, err
	}
	return s.revokeRows(ctx, matches)
}

func (s *PostgresAuthorizationStore) revokeRows(ctx context.Context, auths []*domain.Authorization) (int64, error) {
	ids := make([]int64, 0, len(auths))
	for _, auth := range auths {
		ids = append(ids, auth.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	affected, err := s.db.ExecAffected(ctx,
		"UPDATE oidc_authorizations SET status = $1 WHERE id = ANY($2)",
		domain.StatusRevoked.String(), ids)
	if err != nil {
		return 0, domain.ErrDatabaseQuery
	}
	return affected, nil
}

// Prune deletes every non-Valid authorization created before threshold.
func (s *PostgresAuthorizationStore) Prune(ctx context.Context, threshold time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	affected, err := s.db.ExecAffected(ctx,
		"DELETE FROM oidc_authorizations WHERE create_time < $1 AND status <> $2",
		threshold, domain.StatusValid.String())
	if err != nil {
		return 0, domain.ErrDatabaseQuery
	}
	return affected, nil
}

func (s *PostgresAuthorizationStore) materialize(ctx context.Context) ([]*domain.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, "SELECT "+authorizationColumns+" FROM oidc_authorizations")
	if err != nil {
		s.logger.Error("failed to load authorizations", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresAuthorizationStore) scanAll(ctx context.Context, rows pgx.Rows) ([]*domain.Authorization, error) {
	auths := []*domain.Authorization{}
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		auth, err := scanAuthorization(rows)
		if err != nil {
			s.logger.Error("failed to scan authorization", zap.Error(err))
			return nil, domain.ErrDatabaseQuery
		}
		auths = append(auths, auth)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("failed to read authorizations", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return auths, nil
}

func (s *PostgresAuthorizationStore) scanOne(row pgx.Row) (*domain.Authorization, error) {
	auth, err := scanAuthorization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to scan authorization", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return auth, nil
}

func scanAuthorization(row pgx.Row) (*domain.Authorization, error) {
	auth := &domain.Authorization{}
	var status string
	var scopes, properties *string
	err := row.Scan(&auth.ID, &auth.ApplicationID, &auth.Subject, &auth.Type, &status,
		&scopes, &properties, &auth.CreateTime)
	if err != nil {
		return nil, err
	}
	auth.Status = domain.Status(status)
	auth.Scopes = deserializeStringArray(columnText(scopes))
	auth.Properties = deserializeProperties(columnText(properties))
	return auth, nil
}
