// internal/adapters/in/http/middleware/user_auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient is an alias so router deps can take
// *middleware.FirebaseAuthClient without importing firebase directly.
type FirebaseAuthClient = fbauth.Client

// context keys use a private type to avoid collisions (SA1029).
type ctxKey struct{ name string }

var (
	ctxKeyUID   = ctxKey{name: "uid"}
	ctxKeyEmail = ctxKey{name: "email"}
)

// UserAuth verifies the Firebase ID token on every request and stores
// uid/email in the request context. The uid doubles as the customer id
// for cart and checkout.
type UserAuth struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *UserAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.FirebaseAuth == nil {
			http.Error(w, "user auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		email := ""
		if emailRaw, ok := token.Claims["email"]; ok {
			if e, ok2 := emailRaw.(string); ok2 {
				email = strings.TrimSpace(e)
			}
		}

		ctx := context.WithValue(r.Context(), ctxKeyUID, uid)
		if email != "" {
			ctx = context.WithValue(ctx, ctxKeyEmail, email)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUserUID returns the authenticated customer's uid.
func CurrentUserUID(r *http.Request) (string, bool) {
	v := r.Context().Value(ctxKeyUID)
	u, ok := v.(string)
	if !ok || strings.TrimSpace(u) == "" {
		return "", false
	}
	return strings.TrimSpace(u), true
}

// CurrentUserUIDAndEmail returns uid and email (email can be empty).
func CurrentUserUIDAndEmail(r *http.Request) (uid string, email string, ok bool) {
	uid, ok = CurrentUserUID(r)
	if !ok {
		return "", "", false
	}

	if v := r.Context().Value(ctxKeyEmail); v != nil {
		if e, okEmail := v.(string); okEmail {
			email = strings.TrimSpace(e)
		}
	}

	return uid, email, true
}
