package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/expresskart/expresskart-backend/api/middleware"
	"github.com/expresskart/expresskart-backend/api/responses"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/logger"
)

// caller returns the authenticated principal, writing a 401 when absent.
func caller(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, enums.Role, bool) {
	id, role, err := middleware.Principal(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, "", false
	}
	return id, role, true
}
