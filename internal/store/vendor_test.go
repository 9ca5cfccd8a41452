package store

import (
	"context"
	"testing"

	"github.com/jabumarket/jabumarket/internal/listquery"
	"github.com/jabumarket/jabumarket/internal/model"
)

func TestVendorPhoneNormalization(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "vendor@example.com")

	v, err := NewVendorStore(db).Create(u.ID, "Mama Put", "0801 234 5678", "+234-801-234-5678", "Cafeteria", model.VendorFood)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.Phone != "2348012345678" {
		t.Errorf("phone = %q, want 2348012345678", v.Phone)
	}
	if v.WhatsApp != "2348012345678" {
		t.Errorf("whatsapp = %q, want 2348012345678", v.WhatsApp)
	}
}

func TestVendorVerificationLifecycle(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "vendor@example.com")
	s := NewVendorStore(db)
	v := createTestVendor(t, db, u.ID)

	if v.VerificationStatus != model.VerificationUnverified {
		t.Fatalf("initial status = %q, want unverified", v.VerificationStatus)
	}
	if v.IsVerified() {
		t.Error("new vendor should not be verified")
	}

	v, err := s.RequestVerification(v.ID)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if v.VerificationStatus != model.VerificationRequested {
		t.Errorf("status = %q, want requested", v.VerificationStatus)
	}

	v, err = s.SetVerificationStatus(v.ID, model.VerificationVerified)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !v.IsVerified() {
		t.Error("verified vendor should report verified")
	}
	if !v.Verified {
		t.Error("legacy boolean should follow the verified decision")
	}

	// A verified vendor asking again keeps the verified status.
	v, err = s.RequestVerification(v.ID)
	if err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if v.VerificationStatus != model.VerificationVerified {
		t.Errorf("status = %q, want verified unchanged", v.VerificationStatus)
	}

	v, err = s.SetVerificationStatus(v.ID, model.VerificationRejected)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if v.IsVerified() {
		t.Error("rejected vendor should not report verified")
	}

	// Rejected vendors may re-enter the pipeline.
	v, err = s.RequestVerification(v.ID)
	if err != nil {
		t.Fatalf("request after reject: %v", err)
	}
	if v.VerificationStatus != model.VerificationRequested {
		t.Errorf("status = %q, want requested", v.VerificationStatus)
	}
}

func TestDirectoryShowsOnlyVerified(t *testing.T) {
	db := newTestDB(t)
	s := NewVendorStore(db)

	u1 := createTestUser(t, db, "a@example.com")
	u2 := createTestUser(t, db, "b@example.com")
	u3 := createTestUser(t, db, "c@example.com")

	verified, err := s.Create(u1.ID, "Verified Shop", "08011111111", "", "Mall", model.VendorMall)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.SetVerificationStatus(verified.ID, model.VerificationVerified); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Legacy row verified only through the old boolean.
	legacy, err := s.Create(u2.ID, "Legacy Shop", "08022222222", "", "Gate", model.VendorOther)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.Exec(`UPDATE vendors SET verified = 1 WHERE id = ?`, legacy.ID); err != nil {
		t.Fatalf("mark legacy: %v", err)
	}

	if _, err := s.Create(u3.ID, "Unverified Shop", "08033333333", "", "Hostel", model.VendorStudent); err != nil {
		t.Fatalf("create: %v", err)
	}

	page, err := s.List(context.Background(), listquery.Params{Page: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, want 2 (verified + legacy)", page.Total)
	}
	for _, v := range page.Rows {
		if !v.IsVerified() {
			t.Errorf("directory leaked unverified vendor %q", v.Name)
		}
	}
}

func TestDirectoryNameSort(t *testing.T) {
	db := newTestDB(t)
	s := NewVendorStore(db)

	names := []string{"zeta foods", "Alpha Mart", "beta prints"}
	for i, name := range names {
		u := createTestUser(t, db, name+"@example.com")
		v, err := s.Create(u.ID, name, "08011111111", "", "", model.VendorStudent)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if _, err := s.SetVerificationStatus(v.ID, model.VerificationVerified); err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
	}

	page, err := s.List(context.Background(), listquery.Params{Page: 1, Sort: "name_asc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Alpha Mart", "beta prints", "zeta foods"}
	for i := range want {
		if page.Rows[i].Name != want[i] {
			t.Errorf("row %d = %q, want %q", i, page.Rows[i].Name, want[i])
		}
	}
}

func TestGetVendorByUserID(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "vendor@example.com")
	s := NewVendorStore(db)
	v := createTestVendor(t, db, u.ID)

	got, err := s.GetByUserID(u.ID)
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if got == nil || got.ID != v.ID {
		t.Fatalf("got %+v, want vendor %s", got, v.ID)
	}

	none, err := s.GetByUserID("missing")
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if none != nil {
		t.Error("expected nil for user without vendor profile")
	}
}
