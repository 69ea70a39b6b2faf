package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/provenvalueenterprises-collab/provenv-sub002/pkg/utils"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// CronAuth guards the scheduler trigger with a static shared secret. No
// account is touched before this check passes.
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || secret == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuth accepts only a token issued for the single configured admin user.
func AdminAuth(jwtService JWTServiceInterface, adminUserID int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if claims.UserID != adminUserID {
				utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
