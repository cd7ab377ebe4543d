package models

import "github.com/google/uuid"

// ensureID assigns a v4 id when the caller left it empty. Postgres would fill
// the column default, but rows created through other dialects need it set.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
