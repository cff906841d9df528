// Package repository implements the four OAuth/OIDC persistence stores on
// PostgreSQL. Generic predicate and projection queries materialize the whole
// table into memory before filtering: the runtime supplies arbitrary Go
// functions the engine cannot execute server-side. Table sizes are bounded
// by registered clients and active grants, not request volume, so the full
// scan is an accepted cost rather than something to optimize away.
package repository

import (
	"context"
	"errors"

	"github.com/acornforum/oidc-store/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// textColumn renders a serialized collection/map column, mapping the empty
// string to SQL NULL so empty rows stay empty at the engine level.
func textColumn(text string) *string {
	if text == "" {
		return nil
	}
	return &text
}

// columnText reads a nullable text column back into its in-memory form.
func columnText(column *string) string {
	if column == nil {
		return ""
	}
	return *column
}

// resolveClientID resolves an external client id to its numeric application
// id. Composite find/revoke paths resolve once per call and compare rows by
// number; an unknown client reports ok=false so callers can return zero rows.
func resolveClientID(ctx context.Context, db *database.Postgres, client string) (int64, bool, error) {
	var id int64
	err := db.QueryRow(ctx, "SELECT id FROM oidc_applications WHERE client_id = $1", client).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}
