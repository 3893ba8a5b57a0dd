package controllers

import (
	"net/http"
	"strconv"

	"github.com/monologue-app/monologue-backend/api/responses"
	"github.com/monologue-app/monologue-backend/internal/accounts"
	"github.com/monologue-app/monologue-backend/internal/avatars"
	"github.com/monologue-app/monologue-backend/pkg/logger"
)

// GetAccountIcon streams the derived 256x256 JPEG icon for an account. The
// body is the raw image, not the JSON envelope.
func GetAccountIcon(accountsSvc accounts.Service, avatarsSvc avatars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		origin, err := accountsSvc.OriginImage(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		icon, err := avatarsSvc.Icon(r.Context(), origin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(icon)))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		w.Write(icon)
	}
}
