package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/expresskart/expresskart-backend/api/responses"
	"github.com/expresskart/expresskart-backend/pkg/config"
	"github.com/expresskart/expresskart-backend/pkg/db"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ExpressKart-Env", cfg.App.Env)
		responses.WriteSuccess(w, "live", map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency the API cannot serve without.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ExpressKart-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "ok"}
		failed := false
		for name, p := range map[string]db.Pinger{"database": database, "redis": cache} {
			if p == nil {
				checks[name] = "not configured"
				failed = true
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "unreachable"
				failed = true
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "dependency", name), "readiness check failed")
				}
			}
		}
		if failed {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, "ready", checks)
	}
}
