package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	pkgAuth "github.com/angelmondragon/dzorders-backend/pkg/auth"
	"github.com/angelmondragon/dzorders-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
)

// OperatorAuth validates a bearer token and seeds the request context with the
// operator claims. It is a pass-through when no JWT secret is configured.
func OperatorAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseOperatorToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithOperator(r.Context(), claims.Operator, claims.Role, claims.StaffID)
			if logg != nil {
				ctx = logg.WithOperator(ctx, claims.Operator)
				fields := map[string]any{"operator_role": claims.Role.String()}
				if claims.StaffID != nil {
					fields["staff_id"] = claims.StaffID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
