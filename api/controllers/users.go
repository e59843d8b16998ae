package controllers

import (
	"net/http"

	"github.com/angelmondragon/records-backend/api/responses"
	"github.com/angelmondragon/records-backend/api/validators"
	"github.com/angelmondragon/records-backend/internal/users"
	"github.com/angelmondragon/records-backend/pkg/logger"
)

// ListUsers serves GET /users. With an email query key it returns that one
// user instead of the list.
func ListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if email, ok := validators.QueryParam(r, "email"); ok {
			ctx = withLookup(ctx, logg, "email", email)
			user, err := svc.GetUser(ctx, email)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteSuccess(w, user)
			return
		}

		list, err := svc.ListUsers(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CreateUser serves POST /users/add.
func CreateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload users.CreateUserInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.CreateUser(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// UpdateUser serves PUT /users/update?email=.
func UpdateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		ctx := withLookup(r.Context(), logg, "email", email)

		var payload users.UpdateUserInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.UpdateUser(ctx, email, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// DeleteUser serves DELETE /users/delete?email=.
func DeleteUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		ctx := withLookup(r.Context(), logg, "email", email)

		if err := svc.DeleteUser(ctx, email); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
