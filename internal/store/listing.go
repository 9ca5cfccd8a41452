package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jabumarket/jabumarket/internal/listquery"
	"github.com/jabumarket/jabumarket/internal/model"
)

type ListingStore struct {
	db *sql.DB
}

func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

func scanListing(scanner interface{ Scan(...any) error }) (*model.Listing, error) {
	var l model.Listing
	var price sql.NullFloat64
	var priceLabel sql.NullString
	var negotiable int
	err := scanner.Scan(
		&l.ID, &l.VendorID, &l.Title, &l.Description, &l.Category, &l.Type,
		&price, &priceLabel, &negotiable, &l.Status, &l.Location, &l.ImageKey,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		l.Price = &price.Float64
	}
	if priceLabel.Valid {
		l.PriceLabel = &priceLabel.String
	}
	l.Negotiable = negotiable != 0
	return &l, nil
}

const listingCols = `id, vendor_id, title, description, category, type, price, price_label, negotiable, status, location, image_key, created_at, updated_at`

// ExploreDef drives the Explore page. Default-deny: only active listings
// appear unless the caller widens for an owner or admin view.
var ExploreDef = listquery.Definition{
	Table:         "listings",
	Columns:       listingCols,
	SearchColumns: []string{"title", "description", "location"},
	Filters: []listquery.Filter{
		{Param: "type", Column: "type", Allowed: model.ListingTypes},
		{Param: "category", Column: "category"},
		{Param: "status", Column: "status", Allowed: model.ListingStatuses},
	},
	Sorts: map[string]string{
		"newest":     "created_at DESC",
		"price_asc":  "price ASC NULLS LAST",
		"price_desc": "price DESC NULLS LAST",
	},
	DefaultSort: "newest",
	TieBreak:    "created_at DESC, id DESC",
	Visibility:  "status = 'active'",
	PageSize:    20,
}

// List runs the Explore query.
func (s *ListingStore) List(ctx context.Context, p listquery.Params) (*listquery.Page[model.Listing], error) {
	return listquery.Run(ctx, s.db, ExploreDef, p, func(sc listquery.Scanner) (model.Listing, error) {
		l, err := scanListing(sc)
		if err != nil {
			return model.Listing{}, err
		}
		return *l, nil
	})
}

// ListByVendor runs the widened owner view: the vendor's own listings in
// every status.
func (s *ListingStore) ListByVendor(ctx context.Context, vendorID string, p listquery.Params) (*listquery.Page[model.Listing], error) {
	p.ShowHidden = true
	p.Extra = append(p.Extra, listquery.Cond{Expr: "vendor_id = ?", Args: []any{vendorID}})
	return s.List(ctx, p)
}

func (s *ListingStore) Create(vendorID, title, description, category, listingType, location, imageKey string, price *float64, priceLabel *string, negotiable bool) (*model.Listing, error) {
	id := uuid.NewString()
	neg := 0
	if negotiable {
		neg = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO listings (id, vendor_id, title, description, category, type, price, price_label, negotiable, location, image_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, vendorID, title, description, category, listingType, price, priceLabel, neg, location, imageKey,
	)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return s.GetByID(id)
}

func (s *ListingStore) GetByID(id string) (*model.Listing, error) {
	row := s.db.QueryRow(`SELECT `+listingCols+` FROM listings WHERE id = ?`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

func (s *ListingStore) Update(id, title, description, category, listingType, location, imageKey string, price *float64, priceLabel *string, negotiable bool) (*model.Listing, error) {
	neg := 0
	if negotiable {
		neg = 1
	}
	_, err := s.db.Exec(
		`UPDATE listings SET title = ?, description = ?, category = ?, type = ?, price = ?, price_label = ?, negotiable = ?, location = ?, image_key = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		title, description, category, listingType, price, priceLabel, neg, location, imageKey, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return s.GetByID(id)
}

// SetStatus transitions a listing between active, sold and inactive.
func (s *ListingStore) SetStatus(id, status string) (*model.Listing, error) {
	_, err := s.db.Exec(
		`UPDATE listings SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set listing status: %w", err)
	}
	return s.GetByID(id)
}

func (s *ListingStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return nil
}

// Categories returns the distinct categories of active listings for the
// Explore filter dropdown.
func (s *ListingStore) Categories() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT category FROM listings WHERE status = 'active' AND category != '' ORDER BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
