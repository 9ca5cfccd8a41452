package store

import (
	"database/sql"
	"net/url"
	"testing"

	"github.com/jabumarket/jabumarket/internal/database"
	"github.com/jabumarket/jabumarket/internal/listquery"
	"github.com/jabumarket/jabumarket/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(email, "Test User", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createTestVendor(t *testing.T, db *sql.DB, userID string) *model.Vendor {
	t.Helper()
	v, err := NewVendorStore(db).Create(userID, "Test Vendor", "08012345678", "08012345678", "Hostel B", model.VendorStudent)
	if err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	return v
}

func paramsFromQuery(t *testing.T, def listquery.Definition, raw string) listquery.Params {
	t.Helper()
	v, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("parse query %q: %v", raw, err)
	}
	return def.ParseParams(v)
}

func ptrFloat(f float64) *float64 { return &f }
func ptrStr(s string) *string { return &s }
