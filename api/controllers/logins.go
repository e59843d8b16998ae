package controllers

import (
	"net/http"
	"strconv"

	"github.com/angelmondragon/records-backend/api/responses"
	"github.com/angelmondragon/records-backend/api/validators"
	"github.com/angelmondragon/records-backend/internal/logins"
	"github.com/angelmondragon/records-backend/pkg/logger"
)

const deletedCountHeader = "X-Deleted-Count"

func ListLogins(svc logins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var filter *string
		if email, ok := validators.QueryParam(r, "email"); ok {
			filter = &email
			ctx = withLookup(ctx, logg, "email", email)
		}

		list, err := svc.ListLogins(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CreateLogin(svc logins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload logins.CreateLoginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		login, err := svc.CreateLogin(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, login)
	}
}

// DeleteLogins removes every login for ?email= and always answers 204; the
// number removed goes in the X-Deleted-Count header.
func DeleteLogins(svc logins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		ctx := withLookup(r.Context(), logg, "email", email)

		deleted, err := svc.DeleteLoginsByEmail(ctx, email)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "deleted", deleted), "logins.deleted")
		}
		w.Header().Set(deletedCountHeader, strconv.FormatInt(deleted, 10))
		responses.WriteNoContent(w)
	}
}
