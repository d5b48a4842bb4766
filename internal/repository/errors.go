package repository

import (
	"database/sql"
	"errors"

	"github.com/noah-isme/city-intranet-api/pkg/database"
)

// isMissing reports whether a single-row lookup matched nothing. Ids that do
// not parse as UUIDs are rejected by Postgres with 22P02 and can never match.
func isMissing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || database.IsInvalidText(err)
}
