package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// LookupError maps a repository read failure onto the API taxonomy:
// a missing row becomes NOT_FOUND with notFoundMsg, anything else DEPENDENCY_ERROR.
func LookupError(err error, notFoundMsg, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

// WriteError wraps a persistence write failure unless it already carries a code.
func WriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

// IsPostgres reports whether db talks to Postgres. Row locks and jsonb
// operators are only emitted there; the sqlite test driver gets plain SQL.
func IsPostgres(db *gorm.DB) bool {
	return db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres"
}

// JSONText returns an SQL expression extracting key from a json column as text.
func JSONText(db *gorm.DB, column, key string) string {
	if IsPostgres(db) {
		return column + "->>'" + key + "'"
	}
	return "json_extract(" + column + ", '$." + key + "')"
}
