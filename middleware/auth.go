package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/logging"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/store"
	"github.com/davidpoza/dps-toggl-api/utils"
)

type contextKey string

const userKey contextKey = "user"

// Auth validates the bearer token and loads the authenticated user into the
// request context. A bad or expired token is Unauthorized; a token whose
// subject no longer exists is Forbidden.
func Auth(st store.Store) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Authorization header missing")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := utils.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s from %s: %v", r.Method, r.URL.Path, utils.GetIP(r), err)
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			var user models.User
			if err := st.FindByID(r.Context(), store.Users, userID, &user); err != nil {
				// Correctly signed token for a user that no longer exists.
				logging.Logger.Warnf("Event ID: AUTH_UNKNOWN_SUBJECT, Description: Token subject %s not found for request to %s %s", claims.Subject, r.Method, r.URL.Path)
				writeError(w, http.StatusForbidden, "You are not allowed to access.")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user stored by Auth, or nil.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": message},
	})
}
