package middleware

import (
	"net/http"

	"craftly-be/internal/auth"
	"craftly-be/internal/utils"
)

// Authenticate attaches caller identity to the context when a valid bearer
// credential is present. It never rejects by itself; RequireAdmin does.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.ExtractAccessToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ParseJWT(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := utils.SetUserContext(r.Context(), claims.Email, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards mutating backoffice operations.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if utils.GetUserRoleFromContext(r.Context()) != "ADMIN" {
			utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// InternalOnly guards service-to-service endpoints (the expiry cron) with a
// shared secret header instead of a user credential.
func InternalOnly(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Header.Get("X-Service-Auth") != secret {
				utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := utils.WithInternalRequest(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
