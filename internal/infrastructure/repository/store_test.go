package repository

import (
	"context"
	"testing"

	"github.com/acornforum/oidc-store/internal/infrastructure/config"
	"github.com/acornforum/oidc-store/internal/infrastructure/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupTestDB creates a test database connection with the store schema applied
func setupTestDB(t *testing.T) (*database.Postgres, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections"),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		DBHost:     host,
		DBPort:     port.Int(),
		DBUser:     "test",
		DBPassword: "test",
		DBName:     "test",
	}

	db, err := database.NewPostgres(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	// Create tables
	err = db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS oidc_applications (
			id BIGSERIAL PRIMARY KEY,
			client_id VARCHAR(100) NOT NULL,
			client_secret VARCHAR(500),
			consent_type VARCHAR(50) NOT NULL DEFAULT '',
			display_name VARCHAR(200) NOT NULL DEFAULT '',
			client_type VARCHAR(50) NOT NULL DEFAULT '',
			redirect_uris TEXT,
			post_logout_redirect_uris TEXT,
			permissions TEXT,
			requirements TEXT,
			properties TEXT,
			description VARCHAR(1000),
			create_time TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modify_time TIMESTAMP WITH TIME ZONE,
			CONSTRAINT oidc_applications_client_id_key UNIQUE (client_id)
		);

		CREATE TABLE IF NOT EXISTS oidc_authorizations (
			id BIGSERIAL PRIMARY KEY,
			application_id BIGINT NOT NULL,
			subject VARCHAR(200) NOT NULL DEFAULT '',
			auth_type VARCHAR(50) NOT NULL DEFAULT '',
			status VARCHAR(50) NOT NULL DEFAULT '',
			scopes TEXT,
			properties TEXT,
			create_time TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS oidc_scopes (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			display_name VARCHAR(200) NOT NULL DEFAULT '',
			description VARCHAR(1000),
			resources TEXT,
			properties TEXT,
			create_time TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT oidc_scopes_name_key UNIQUE (name)
		);

		CREATE TABLE IF NOT EXISTS oidc_tokens (
			id BIGSERIAL PRIMARY KEY,
			application_id BIGINT NOT NULL,
			authorization_id BIGINT,
			subject VARCHAR(200) NOT NULL DEFAULT '',
			token_type VARCHAR(50) NOT NULL DEFAULT '',
			status VARCHAR(50) NOT NULL DEFAULT '',
			reference_id VARCHAR(100),
			payload TEXT NOT NULL DEFAULT '',
			properties TEXT,
			create_time TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expiration_time TIMESTAMP WITH TIME ZONE,
			redemption_time TIMESTAMP WITH TIME ZONE
		);

		CREATE UNIQUE INDEX IF NOT EXISTS oidc_tokens_reference_id_key
			ON oidc_tokens (reference_id) WHERE reference_id IS NOT NULL;
	`)
	require.NoError(t, err)

	// Clean up tables before each test
	err = db.Exec(ctx, `
		TRUNCATE TABLE oidc_applications, oidc_authorizations, oidc_scopes, oidc_tokens RESTART IDENTITY CASCADE;
	`)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		container.Terminate(ctx)
	}

	return db, cleanup
}
