package roles

import (
	"log/slog"
	"net/http"

	"github.com/tawreed/tawreed/internal/shared"
)

// Middleware wires capability checks for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Check selects the capability a route requires.
type Check func(Capabilities) bool

// Require rejects requests whose principal lacks the capability. It fails
// closed: no principal, no access.
func (m Middleware) Require(check Check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal.UserID == "" {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			caps := Resolve(Role(principal.Role))
			if check == nil || !check(caps) {
				if m.Logger != nil {
					m.Logger.Warn("capability denied",
						slog.String("user_id", principal.UserID),
						slog.String("role", principal.Role),
						slog.String("path", r.URL.Path))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
