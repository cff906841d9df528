package repository

import (
	"context"
	"errors"

	"github.com/acornforum/oidc-store/internal/domain"
	"github.com/acornforum/oidc-store/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const applicationColumns = `id, client_id, client_secret, consent_type, display_name, client_type,
		redirect_uris, post_logout_redirect_uris, permissions, requirements, properties,
		description, create_time, modify_time`

// PostgresApplicationStore implements domain.ApplicationStore using PostgreSQL
type PostgresApplicationStore struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewApplicationStore creates a new PostgresApplicationStore
func NewApplicationStore(db *database.Postgres, logger *zap.Logger) domain.ApplicationStore {
	return &PostgresApplicationStore{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresApplicationStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM oidc_applications").Scan(&count)
	if err != nil {
		s.logger.Error("failed to count applications", zap.Error(err))
		return 0, domain.ErrDatabaseQuery
	}
	return count, nil
}

func (s *PostgresApplicationStore) CountBy(ctx context.Context, pred func(*domain.Application) bool) (int64, error) {
	if pred == nil {
		return 0, domain.ErrNilQuery
	}
	apps, err := s.materialize(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, app := range apps {
		if pred(app) {
			count++
		}
	}
	return count, nil
}

func (s *PostgresApplicationStore) FindByID(ctx context.Context, identifier string) (*domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := domain.ParseID(identifier)
	if !ok {
		return nil, nil
	}
	row := s.db.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM oidc_applications WHERE id = $1
	`, id)
	return s.scanOne(row)
}

func (s *PostgresApplicationStore) FindByClientID(ctx context.Context, clientID string) (*domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if clientID == "" {
		return nil, nil
	}
	row := s.db.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM oidc_applications WHERE client_id = $1
	`, clientID)
	return s.scanOne(row)
}

func (s *PostgresApplicationStore) FindByRedirectURI(ctx context.Context, uri string) ([]*domain.Application, error) {
	return s.findByURI(ctx, uri, func(app *domain.Application) []string {
		return app.RedirectURIs
	})
}

func (s *PostgresApplicationStore) FindByPostLogoutRedirectURI(ctx context.Context, uri string) ([]*domain.Application, error) {
	return s.findByURI(ctx, uri, func(app *domain.Application) []string {
		return app.PostLogoutRedirectURIs
	})
}

// findByURI linear-scans the materialized application set and keeps rows
// whose selected URI list contains uri.
func (s *PostgresApplicationStore) findByURI(ctx context.Context, uri string, uris func(*domain.Application) []string) ([]*domain.Application, error) {
	if uri == "" {
		return []*domain.Application{}, nil
	}
	apps, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}
	matches := []*domain.Application{}
	for _, app := range apps {
		if containsString(uris(app), uri) {
			matches = append(matches, app)
		}
	}
	return matches, nil
}

func (s *PostgresApplicationStore) List(ctx context.Context, limit, offset int) ([]*domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := "SELECT " + applicationColumns + " FROM oidc_applications ORDER BY id"
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
		s.logger.Error("failed to list applications", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresApplicationStore) Query(ctx context.Context, query domain.ApplicationQuery, state any) ([]any, error) {
	if query == nil {
		return nil, domain.ErrNilQuery
	}
	apps, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}
	return query(apps, state), nil
}

func (s *PostgresApplicationStore) QueryOne(ctx context.Context, query domain.ApplicationQuery, state any) (any, error) {
	results, err := s.Query(ctx, query, state)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (s *PostgresApplicationStore) Create(ctx context.Context, app *domain.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if app == nil {
		return domain.ErrNilEntity
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO oidc_applications (client_id, client_secret, consent_type, display_name, client_type,
			redirect_uris, post_logout_redirect_uris, permissions, requirements, properties,
			description, create_time, modify_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, app.ClientID, app.ClientSecret, app.ConsentType, app.DisplayName, app.Type,
		textColumn(serializeStringArray(app.RedirectURIs)),
		textColumn(serializeStringArray(app.PostLogoutRedirectURIs)),
		textColumn(serializeStringArray(app.Permissions)),
		textColumn(serializeStringArray(app.Requirements)),
		textColumn(serializeProperties(app.Properties)),
		app.Description, app.CreateTime, app.ModifyTime,
	).Scan(&app.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateClientID
		}
		s.logger.Error("failed to create application", zap.String("client_id", app.ClientID), zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (s *PostgresApplicationStore) Update(ctx context.Context, app *domain.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if app == nil {
		return domain.ErrNilEntity
	}
	err := s.db.Exec(ctx, `
		UPDATE oidc_applications
		SET client_id = $1, client_secret = $2, consent_type = $3, display_name = $4, client_type = $5,
			redirect_uris = $6, post_logout_redirect_uris = $7, permissions = $8, requirements = $9,
			properties = $10, description = $11, modify_time = $12
		WHERE id = $13
	`, app.ClientID, app.ClientSecret, app.ConsentType, app.DisplayName, app.Type,
		textColumn(serializeStringArray(app.RedirectURIs)),
		textColumn(serializeStringArray(app.PostLogoutRedirectURIs)),
		textColumn(serializeStringArray(app.Permissions)),
		textColumn(serializeStringArray(app.Requirements)),
		textColumn(serializeProperties(app.Properties)),
		app.Description, app.ModifyTime, app.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateClientID
		}
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (s *PostgresApplicationStore) Delete(ctx context.Context, app *domain.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if app == nil {
		return domain.ErrNilEntity
	}
	return s.db.Exec(ctx, "DELETE FROM oidc_applications WHERE id = $1", app.ID)
}

func (s *PostgresApplicationStore) Instantiate(ctx context.Context) (*domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.NewApplication(), nil
}

// materialize loads the whole application table into memory.
func (s *PostgresApplicationStore) materialize(ctx context.Context) ([]*domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, "SELECT "+applicationColumns+" FROM oidc_applications")
	if err != nil {
		s.logger.Error("failed to load applications", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()
	return s.scanAll(ctx, rows)
}

func (s *PostgresApplicationStore) scanAll(ctx context.Context, rows pgx.Rows) ([]*domain.Application, error) {
	apps := []*domain.Application{}
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		app, err := scanApplication(rows)
		if err != nil {
			s.logger.Error("failed to scan application", zap.Error(err))
			return nil, domain.ErrDatabaseQuery
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("failed to read applications", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return apps, nil
}

func (s *PostgresApplicationStore) scanOne(row pgx.Row) (*domain.Application, error) {
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to scan application", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return app, nil
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	app := &domain.Application{}
	var redirectURIs, postLogoutURIs, permissions, requirements, properties *string
	err := row.Scan(&app.ID, &app.ClientID, &app.ClientSecret, &app.ConsentType, &app.DisplayName,
		&app.Type, &redirectURIs, &postLogoutURIs, &permissions, &requirements, &properties,
		&app.Description, &app.CreateTime, &app.ModifyTime)
	if err != nil {
		return nil, err
	}
	app.RedirectURIs = deserializeStringArray(columnText(redirectURIs))
	app.PostLogoutRedirectURIs = deserializeStringArray(columnText(postLogoutURIs))
	app.Permissions = deserializeStringArray(columnText(permissions))
	app.Requirements = deserializeStringArray(columnText(requirements))
	app.Properties = deserializeProperties(columnText(properties))
	return app, nil
}
