package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jabumarket/jabumarket/internal/listquery"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/whatsapp"
)

type VendorStore struct {
	db *sql.DB
}

func NewVendorStore(db *sql.DB) *VendorStore {
	return &VendorStore{db: db}
}

func scanVendor(scanner interface{ Scan(...any) error }) (*model.Vendor, error) {
	var v model.Vendor
	var verified int
	err := scanner.Scan(
		&v.ID, &v.UserID, &v.Name, &v.Phone, &v.WhatsApp, &v.Location,
		&v.Type, &verified, &v.VerificationStatus, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Verified = verified != 0
	return &v, nil
}

const vendorCols = `id, user_id, name, phone, whatsapp, location, type, verified, verification_status, created_at, updated_at`

// DirectoryDef drives the vendor directory list endpoint. Default-deny:
// only verified vendors (either signal) appear unless widened.
var DirectoryDef = listquery.Definition{
	Table:         "vendors",
	Columns:       vendorCols,
	SearchColumns: []string{"name", "location", "phone"},
	Filters: []listquery.Filter{
		{Param: "type", Column: "type", Allowed: model.VendorTypes},
	},
	Sorts: map[string]string{
		"newest":   "created_at DESC",
		"name_asc": "name COLLATE NOCASE ASC",
	},
	DefaultSort: "newest",
	TieBreak:    "created_at DESC, id DESC",
	Visibility:  "(verification_status = 'verified' OR verified = 1)",
	PageSize:    20,
}

// List runs the directory query.
func (s *VendorStore) List(ctx context.Context, p listquery.Params) (*listquery.Page[model.Vendor], error) {
	return listquery.Run(ctx, s.db, DirectoryDef, p, func(sc listquery.Scanner) (model.Vendor, error) {
		v, err := scanVendor(sc)
		if err != nil {
			return model.Vendor{}, err
		}
		return *v, nil
	})
}

// Create registers a vendor profile for a user. Phone numbers are
// normalized to digits before storage.
func (s *VendorStore) Create(userID, name, phone, whatsApp, location, vendorType string) (*model.Vendor, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO vendors (id, user_id, name, phone, whatsapp, location, type) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, name,
		whatsapp.NormalizeNumber(phone), whatsapp.NormalizeNumber(whatsApp),
		location, vendorType,
	)
	if err != nil {
		return nil, fmt.Errorf("insert vendor: %w", err)
	}
	return s.GetByID(id)
}

func (s *VendorStore) GetByID(id string) (*model.Vendor, error) {
	row := s.db.QueryRow(`SELECT `+vendorCols+` FROM vendors WHERE id = ?`, id)
	v, err := scanVendor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return v, nil
}

func (s *VendorStore) GetByUserID(userID string) (*model.Vendor, error) {
	row := s.db.QueryRow(`SELECT `+vendorCols+` FROM vendors WHERE user_id = ?`, userID)
	v, err := scanVendor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor by user: %w", err)
	}
	return v, nil
}

func (s *VendorStore) Update(id, name, phone, whatsApp, location, vendorType string) (*model.Vendor, error) {
	_, err := s.db.Exec(
		`UPDATE vendors SET name = ?, phone = ?, whatsapp = ?, location = ?, type = ?, updated_at = datetime('now') WHERE id = ?`,
		name, whatsapp.NormalizeNumber(phone), whatsapp.NormalizeNumber(whatsApp),
		location, vendorType, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update vendor: %w", err)
	}
	return s.GetByID(id)
}

// RequestVerification moves an unverified vendor to requested. Vendors
// already in the pipeline (or verified) keep their current status.
func (s *VendorStore) RequestVerification(id string) (*model.Vendor, error) {
	_, err := s.db.Exec(
		`UPDATE vendors SET verification_status = ?, updated_at = datetime('now')
		 WHERE id = ? AND verification_status IN (?, ?)`,
		model.VerificationRequested, id,
		model.VerificationUnverified, model.VerificationRejected,
	)
	if err != nil {
		return nil, fmt.Errorf("request verification: %w", err)
	}
	return s.GetByID(id)
}

// SetVerificationStatus applies an admin decision. Moving to verified also
// sets the legacy boolean so older readers agree.
func (s *VendorStore) SetVerificationStatus(id, status string) (*model.Vendor, error) {
	legacy := 0
	if status == model.VerificationVerified {
		legacy = 1
	}
	_, err := s.db.Exec(
		`UPDATE vendors SET verification_status = ?, verified = ?, updated_at = datetime('now') WHERE id = ?`,
		status, legacy, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set verification status: %w", err)
	}
	return s.GetByID(id)
}

func (s *VendorStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM vendors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	return nil
}
