package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/database"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/store"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	u, err := users.Create("user@example.com", "Test User", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	a := &Authenticator{
		Sessions: store.NewSessionStore(db),
		Users:    users,
		Vendors:  store.NewVendorStore(db),
		Tokens:   auth.NewTokenVerifier("test-secret"),
	}
	return a, u
}

func viewerEcho(t *testing.T, got *auth.Viewer) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v, ok := auth.FromContext(r.Context()); ok {
			*got = v
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	req := httptest.NewRequest("GET", "/api/me", nil)
	rec := httptest.NewRecorder()
	a.RequireAuth(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthWithSessionCookie(t *testing.T) {
	a, u := newTestAuthenticator(t)
	sess, err := a.Sessions.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var got auth.Viewer
	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	a.RequireAuth(viewerEcho(t, &got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != u.ID {
		t.Errorf("viewer user = %q, want %q", got.UserID, u.ID)
	}
	if got.SessionID != sess.ID {
		t.Errorf("viewer session = %d, want %d", got.SessionID, sess.ID)
	}
}

func TestRequireAuthWithBearerToken(t *testing.T) {
	a, u := newTestAuthenticator(t)
	token, err := a.Tokens.Mint(u.ID, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	var got auth.Viewer
	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.RequireAuth(viewerEcho(t, &got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != u.ID {
		t.Errorf("viewer user = %q, want %q", got.UserID, u.ID)
	}
}

func TestRequireAuthRejectsUnknownSubject(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	token, err := a.Tokens.Mint("no-such-user", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.RequireAuth(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestViewerCarriesVendorAndAdmin(t *testing.T) {
	a, u := newTestAuthenticator(t)
	v, err := a.Vendors.Create(u.ID, "Shop", "08011111111", "", "Gate", model.VendorStudent)
	if err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	if err := a.Users.GrantAdmin(u.ID); err != nil {
		t.Fatalf("grant admin: %v", err)
	}
	sess, err := a.Sessions.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var got auth.Viewer
	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	a.RequireAuth(viewerEcho(t, &got)).ServeHTTP(rec, req)

	if got.VendorID != v.ID {
		t.Errorf("viewer vendor = %q, want %q", got.VendorID, v.ID)
	}
	if !got.Admin {
		t.Error("viewer should be admin")
	}
}

func TestOptionalAllowsAnonymous(t *testing.T) {
	a, u := newTestAuthenticator(t)

	var got auth.Viewer
	req := httptest.NewRequest("GET", "/api/listings", nil)
	rec := httptest.NewRecorder()
	a.Optional(viewerEcho(t, &got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != "" {
		t.Error("anonymous request should have no viewer")
	}

	sess, err := a.Sessions.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	req = httptest.NewRequest("GET", "/api/listings", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec = httptest.NewRecorder()
	a.Optional(viewerEcho(t, &got)).ServeHTTP(rec, req)

	if got.UserID != u.ID {
		t.Errorf("viewer user = %q, want %q", got.UserID, u.ID)
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/admin/x", nil)
	rec := httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("anonymous status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/admin/x", nil)
	req = req.WithContext(auth.WithViewer(req.Context(), auth.Viewer{UserID: "u1", Admin: true}))
	rec = httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}
