package controllers

import (
	"net/http"
	"strings"

	"github.com/expresskart/expresskart-backend/api/responses"
	"github.com/expresskart/expresskart-backend/api/validators"
	"github.com/expresskart/expresskart-backend/internal/admin"
	"github.com/expresskart/expresskart-backend/pkg/logger"
)

func AdminStats(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "", stats)
	}
}

func AdminUsers(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, meta, err := svc.ListUsers(r.Context(), strings.TrimSpace(r.URL.Query().Get("role")), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, "", list, meta)
	}
}

func AdminUserStatus(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		userID, err := validators.URLParamUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req admin.UserStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.SetUserStatus(r.Context(), adminID, userID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "user status updated", user)
	}
}

func AdminVendors(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, meta, err := svc.ListVendors(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, "", list, meta)
	}
}
