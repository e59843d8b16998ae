package middleware

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/records-backend/api/responses"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/logger"
)

// Recoverer turns a handler panic into a logged 500 response.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					ctx := r.Context()
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{"panic": rec})
						logg.Error(ctx, "panic.recovered", err)
					}
					responses.WriteError(ctx, nil, w, pkgerrors.Internal(err))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
