package middleware

import (
	"net/http"

	"github.com/twoflytrading/wholesale-backend/api/responses"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
)

// RequireOwner blocks callers whose role lacks owner-level access. Admins
// carry the same access as owners.
func RequireOwner(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !role.IsOwner() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "owner role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
