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

const tokenColumns = `id, application_id, authorization_id, subject, token_type, status, reference_id,
		payload, properties, create_time, expiration_time, redemption_time`

// PostgresTokenStore implements domain.TokenStore using PostgreSQL
type PostgresTokenStore struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewTokenStore creates a new PostgresTokenStore
func NewTokenStore(db *database.Postgres, logger *zap.Logger) domain.TokenStore {
	return &PostgresTokenStore{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresTokenStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM oidc_tokens").Scan(&count)
	if err != nil {
		s.logger.Error("failed to count tokens", zap.Error(err))
		return 0, domain.ErrDatabaseQuery
	}
	return count, nil
}

func (s *PostgresTokenStore) CountBy(ctx context.Context, pred func(*domain.Token) bool) (int64, error) {
	if pred == nil {
		return 0, domain.ErrNilQuery
	}
	tokens, err := s.materialize(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, token := range tokens {
		if pred(token) {
			count++
		}
	}
	return count, nil
}

func (s *PostgresTokenStore) FindByID(ctx context.Context, identifier string) (*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := domain.ParseID(identifier)
	if !ok {
		return nil, nil
	}
	row := s.db.QueryRow(ctx, "SELECT "+tokenColumns+" FROM oidc_tokens WHERE id = $1", id)
	return s.scanOne(row)
}

func (s *PostgresTokenStore) FindByReferenceID(ctx context.Context, referenceID string) (*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if referenceID == "" {
		return nil, nil
	}
	row := s.db.QueryRow(ctx, "SELECT "+tokenColumns+" FROM oidc_tokens WHERE reference_id = $1", referenceID)
	return s.scanOne(row)
}

// Find returns every token matching all supplied filter fields. The client
// filter is resolved against the application table once, then matched by
// numeric id per row.
func (s *PostgresTokenStore) Find(ctx context.Context, filter domain.TokenFilter) ([]*domain.Token, error) {
	tokens, err := s.materialize(ctx)
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

	matches := []*domain.Token{}
	if filter.Client != "" && !resolved {
		// Unknown client resolves to zero rows, not an error.
		return matches, nil
	}
	for _, token := range tokens {
		if !matchesToken(token, filter, appID) {
			continue
		}
		matches = append(matches, token)
	}
	return matches, nil
}

func matchesToken(token *domain.Token, filter domain.TokenFilter, appID int64) bool {
	if filter.Subject != "" && token.Subject != filter.Subject {
		return false
	}
	if filter.Status != "" && token.Status != filter.Status {
		return false
	}
	if filter.Type != "" && token.Type != filter.Type {
		return false
	}
	if filter.Client != "" && token.ApplicationID != appID {
		return false
	}
	return true
}

func (s *PostgresTokenStore) FindByApplicationID(ctx context.Context, identifier string) ([]*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	appID, ok := domain.ParseID(identifier)
	if !ok {
		return []*domain.Token{}, nil
	}
	rows, err := s.db.Query(ctx, "SELECT "+tokenColumns+" FROM oidc_tokens WHERE application_id = $1", appID)
	if err != nil {
		s.logger.Error("failed to find tokens by application", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresTokenStore) FindByAuthorizationID(ctx context.Context, identifier string) ([]*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	authID, ok := domain.ParseID(identifier)
	if !ok {
		return []*domain.Token{}, nil
	}
	rows, err := s.db.Query(ctx, "SELECT "+tokenColumns+" FROM oidc_tokens WHERE authorization_id = $1", authID)
	if err != nil {
		s.logger.Error("failed to find tokens by authorization", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresTokenStore) FindBySubject(ctx context.Context, subject string) ([]*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if subject == "" {
		return []*domain.Token{}, nil
	}
	rows, err := s.db.Query(ctx, "SELECT "+tokenColumns+" FROM oidc_tokens WHERE subject = $1", subject)
	if err != nil {
		s.logger.Error("failed to find tokens by subject", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresTokenStore) List(ctx context.Context, limit, offset int) ([]*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := "SELECT " + tokenColumns + " FROM oidc_tokens ORDER BY id"
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
		s.logger.Error("failed to list tokens", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresTokenStore) Query(ctx context.Context, query domain.TokenQuery, state any) ([]any, error) {
	if query == nil {
		return nil, domain.ErrNilQuery
	}
	tokens, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}
	return query(tokens, state), nil
}

func (s *PostgresTokenStore) QueryOne(ctx context.Context, query domain.TokenQuery, state any) (any, error) {
	results, err := s.Query(ctx, query, state)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (s *PostgresTokenStore) Create(ctx context.Context, token *domain.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if token == nil {
		return domain.ErrNilEntity
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO oidc_tokens (application_id, authorization_id, subject, token_type, status, reference_id,
			payload, properties, create_time, expiration_time, redemption_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, token.ApplicationID, token.AuthorizationID, token.Subject, token.Type, token.Status.String(),
		token.ReferenceID, token.Payload,
		textColumn(serializeProperties(token.Properties)),
		token.CreateTime, token.ExpirationTime, token.RedemptionTime,
	).Scan(&token.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReferenceID
		}
		s.logger.Error("failed to create token", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (s *PostgresTokenStore) Update(ctx context.Context, token *domain.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if token == nil {
		return domain.ErrNilEntity
	}
	err := s.db.Exec(ctx, `
		UPDATE oidc_tokens
		SET application_id = $1, authorization_id = $2, subject = $3, token_type = $4, status = $5,
			reference_id = $6, payload = $7, properties = $8, expiration_time = $9, redemption_time = $10
		WHERE id = $11
	`, token.ApplicationID, token.AuthorizationID, token.Subject, token.Type, token.Status.String(),
		token.ReferenceID, token.Payload,
		textColumn(serializeProperties(token.Properties)),
		token.ExpirationTime, token.RedemptionTime, token.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReferenceID
		}
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (s *PostgresTokenStore) Delete(ctx context.Context, token *domain.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if token == nil {
		return domain.ErrNilEntity
	}
	return s.db.Exec(ctx, "DELETE FROM oidc_tokens WHERE id = $1", token.ID)
}

func (s *PostgresTokenStore) Instantiate(ctx context.Context) (*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.NewToken(), nil
}

// Revoke applies the composite filter exactly as Find does, then flips every
// match to Revoked in one bulk update.
func (s *PostgresTokenStore) Revoke(ctx context.Context, filter domain.TokenFilter) (int64, error) {
	matches, err := s.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	return s.revokeRows(ctx, matches)
}

func (s *PostgresTokenStore) RevokeBySubject(ctx context.Context, subject string) (int64, error) {
	if subject == "" {
		return 0, nil
	}
	matches, err := s.FindBySubject(ctx, subject)
	if err != nil {
		return 0, err
	}
	return s.revokeRows(ctx, matches)
}

func (s *PostgresTokenStore) RevokeByApplicationID(ctx context.Context, identifier string) (int64, error) {
	matches, err := s.FindByApplicationID(ctx, identifier)
	if err != nil {
		return 0, err
	}
	return s.revokeRows(ctx, matches)
}

func (s *PostgresTokenStore) RevokeByAuthorizationID(ctx context.Context, identifier string) (int64, error) {
	matches, err := s.FindByAuthorizationID(ctx, identifier)
	if err != nil {
		return 0, err
	}
	return s.revokeRows(ctx, matches)
}

func (s *PostgresTokenStore) revokeRows(ctx context.Context, tokens []*domain.Token) (int64, error) {
	ids := make([]int64, 0, len(tokens))
	for _, token := range tokens {
		ids = append(ids, token.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	affected, err := s.db.ExecAffected(ctx,
		"UPDATE oidc_tokens SET status = $1 WHERE id = ANY($2)",
		domain.StatusRevoked.String(), ids)
	if err != nil {
		return 0, domain.ErrDatabaseQuery
	}
	return affected, nil
}

// Prune deletes every non-Valid token whose expiration time is set and
// before threshold. Non-expiring tokens are never pruned through this path.
func (s *PostgresTokenStore) Prune(ctx context.Context, threshold time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	affected, err := s.db.ExecAffected(ctx,
		"DELETE FROM oidc_tokens WHERE expiration_time IS NOT NULL AND expiration_time < $1 AND status <> $2",
		threshold, domain.StatusValid.String())
	if err != nil {
		return 0, domain.ErrDatabaseQuery
	}
	return affected, nil
}

func (s *PostgresTokenStore) materialize(ctx context.Context) ([]*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, "SELECT "+tokenColumns+" FROM oidc_tokens")
	if err != nil {
		s.logger.Error("failed to load tokens", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresTokenStore) scanAll(ctx context.Context, rows pgx.Rows) ([]*domain.Token, error) {
	tokens := []*domain.Token{}
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		token, err := scanToken(rows)
		if err != nil {
			s.logger.Error("failed to scan token", zap.Error(err))
			return nil, domain.ErrDatabaseQuery
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("failed to read tokens", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return tokens, nil
}

func (s *PostgresTokenStore) scanOne(row pgx.Row) (*domain.Token, error) {
	token, err := scanToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to scan token", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return token, nil
}

func scanToken(row pgx.Row) (*domain.Token, error) {
	token := &domain.Token{}
	var status string
	var properties *string
	err := row.Scan(&token.ID, &token.ApplicationID, &token.AuthorizationID, &token.Subject,
		&token.Type, &status, &token.ReferenceID, &token.Payload, &properties,
		&token.CreateTime, &token.ExpirationTime, &token.RedemptionTime)
	if err != nil {
		return nil, err
	}
	token.Status = domain.Status(status)
	token.Properties = deserializeProperties(columnText(properties))
	return token, nil
}
