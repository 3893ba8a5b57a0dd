package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/monologue-app/monologue-backend/api/controllers"
	"github.com/monologue-app/monologue-backend/api/middleware"
	"github.com/monologue-app/monologue-backend/internal/accounts"
	"github.com/monologue-app/monologue-backend/internal/avatars"
	"github.com/monologue-app/monologue-backend/pkg/config"
	"github.com/monologue-app/monologue-backend/pkg/db"
	"github.com/monologue-app/monologue-backend/pkg/logger"
	"github.com/monologue-app/monologue-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	accountsService accounts.Service,
	avatarsService avatars.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		checks := map[string]func(context.Context) error{}
		if dbP != nil {
			checks["db"] = dbP.Ping
		}
		if redisClient != nil {
			checks["redis"] = redisClient.Ping
		}
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks))
	})

	r.Route("/api/v1/accounts", func(r chi.Router) {
		r.Get("/", controllers.ListAccounts(accountsService, logg))
		r.Post("/", controllers.CreateAccount(accountsService, logg))

		r.Route("/{accountId}", func(r chi.Router) {
			r.Get("/", controllers.GetAccount(accountsService, logg))
			r.Put("/", controllers.UpdateAccount(accountsService, logg))
			r.Patch("/", controllers.PatchAccount(accountsService, logg))
			r.Delete("/", controllers.DeleteAccount(accountsService, logg))

			r.Get("/icon", controllers.GetAccountIcon(accountsService, avatarsService, logg))
			r.Get("/followers", controllers.ListFollowers(accountsService, logg))
			r.Get("/following", controllers.ListFollowing(accountsService, logg))
			r.Put("/following/{targetId}", controllers.FollowAccount(accountsService, logg))
			r.Delete("/following/{targetId}", controllers.UnfollowAccount(accountsService, logg))
		})
	})

	r.Route("/api/admin/v1/accounts", func(r chi.Router) {
		r.Post("/superuser", controllers.CreateSuperuser(accountsService, logg))
		r.Post("/{accountId}/email", controllers.EmailAccount(accountsService, logg))
	})

	return r
}
