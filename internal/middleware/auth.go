package middleware

import (
	"net/http"
	"strings"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/store"
)

const SessionCookieName = "jabumarket_session"

// Authenticator resolves the caller's identity from either the session
// cookie or a bearer token from the external identity provider.
type Authenticator struct {
	Sessions *store.SessionStore
	Users    *store.UserStore
	Vendors  *store.VendorStore
	Tokens   *auth.TokenVerifier
}

func (a *Authenticator) viewer(r *http.Request) (auth.Viewer, bool) {
	var v auth.Viewer

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		userID, err := a.Tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return v, false
		}
		v.UserID = userID
	} else if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		sess, err := a.Sessions.GetByToken(cookie.Value)
		if err != nil || sess == nil {
			return v, false
		}
		v.UserID = sess.UserID
		v.SessionID = sess.ID
	} else {
		return v, false
	}

	if u, err := a.Users.GetByID(v.UserID); err != nil || u == nil {
		return v, false
	}
	if admin, err := a.Users.IsAdmin(v.UserID); err == nil {
		v.Admin = admin
	}
	if vendor, err := a.Vendors.GetByUserID(v.UserID); err == nil && vendor != nil {
		v.VendorID = vendor.ID
	}
	return v, true
}

// RequireAuth rejects unauthenticated requests and populates the viewer.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := a.viewer(r)
		if !ok {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithViewer(r.Context(), v)))
	})
}

// Optional populates the viewer when credentials are present but lets
// anonymous requests through. Public list endpoints use it so owners and
// admins can widen their own views.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v, ok := a.viewer(r); ok {
			r = r.WithContext(auth.WithViewer(r.Context(), v))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin checks that the authenticated viewer is an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			http.Error(w, `{"error":"admin only"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
