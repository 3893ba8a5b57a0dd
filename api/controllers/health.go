package controllers

import (
	"context"
	"net/http"

	"github.com/monologue-app/monologue-backend/api/responses"
	"github.com/monologue-app/monologue-backend/pkg/config"
	pkgerrors "github.com/monologue-app/monologue-backend/pkg/errors"
	"github.com/monologue-app/monologue-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Monologue-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Monologue-Env", cfg.App.Env)

		statuses := map[string]string{}
		healthy := true
		for name, check := range checks {
			if check == nil {
				statuses[name] = "skipped"
				continue
			}
			if err := check(r.Context()); err != nil {
				statuses[name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(r.Context(), "health check failed: "+name, err)
				}
				continue
			}
			statuses[name] = "up"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, statuses)
	}
}
