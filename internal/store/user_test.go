package store

import "testing"

func TestUserCRUD(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)

	u, err := s.Create("ada@example.com", "Ada", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("missing id")
	}

	byEmail, err := s.GetByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("got %+v", byEmail)
	}

	updated, err := s.UpdateName(u.ID, "Ada L")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ada L" {
		t.Errorf("name = %q", updated.Name)
	}

	if err := s.Delete(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := s.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if gone != nil {
		t.Error("user still present after delete")
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)

	if _, err := s.Create("ada@example.com", "Ada", "hash"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create("ada@example.com", "Other", "hash"); err == nil {
		t.Error("expected unique constraint error")
	}
}

func TestAdminGrant(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)
	u := createTestUser(t, db, "admin@example.com")

	admin, err := s.IsAdmin(u.ID)
	if err != nil {
		t.Fatalf("is admin: %v", err)
	}
	if admin {
		t.Error("new user should not be admin")
	}

	if err := s.GrantAdmin(u.ID); err != nil {
		t.Fatalf("grant: %v", err)
	}
	// Granting twice is a no-op.
	if err := s.GrantAdmin(u.ID); err != nil {
		t.Fatalf("re-grant: %v", err)
	}

	admin, err = s.IsAdmin(u.ID)
	if err != nil {
		t.Fatalf("is admin: %v", err)
	}
	if !admin {
		t.Error("granted user should be admin")
	}
}
