package listquery

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/jabumarket/jabumarket/internal/database"
)

var testDef = Definition{
	Table:         "listings",
	Columns:       "id, title, price, status",
	SearchColumns: []string{"title", "description", "location"},
	Filters: []Filter{
		{Param: "type", Column: "type", Allowed: []string{"product", "service"}},
		{Param: "category", Column: "category"},
	},
	Sorts: map[string]string{
		"newest":     "created_at DESC",
		"price_asc":  "price ASC NULLS LAST",
		"price_desc": "price DESC NULLS LAST",
	},
	DefaultSort: "newest",
	TieBreak:    "created_at DESC, id DESC",
	Visibility:  "status = 'active'",
	PageSize:    3,
}

type testRow struct {
	ID     string
	Title  string
	Price  *float64
	Status string
}

func scanTestRow(sc Scanner) (testRow, error) {
	var r testRow
	var price sql.NullFloat64
	if err := sc.Scan(&r.ID, &r.Title, &price, &r.Status); err != nil {
		return testRow{}, err
	}
	if price.Valid {
		r.Price = &price.Float64
	}
	return r, nil
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mustExec(t, db, `INSERT INTO users (id, email) VALUES ('u1', 'u1@test')`)
	mustExec(t, db, `INSERT INTO vendors (id, user_id, name) VALUES ('v1', 'u1', 'Vendor One')`)
	return db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// insertListing inserts a listing with an explicit created_at offset so
// ordering assertions are deterministic.
func insertListing(t *testing.T, db *sql.DB, id, title, description, location, typ, category, status string, price *float64, ageMinutes int) {
	t.Helper()
	mustExec(t, db,
		`INSERT INTO listings (id, vendor_id, title, description, location, type, category, status, price, created_at)
		 VALUES (?, 'v1', ?, ?, ?, ?, ?, ?, ?, datetime('now', ?))`,
		id, title, description, location, typ, category, status, price,
		fmt.Sprintf("-%d minutes", ageMinutes),
	)
}

func ptr(f float64) *float64 { return &f }

func TestParseParamsDefaults(t *testing.T) {
	p := testDef.ParseParams(url.Values{})
	if p.Query != "" {
		t.Errorf("query = %q, want empty", p.Query)
	}
	if p.Sort != "newest" {
		t.Errorf("sort = %q, want newest", p.Sort)
	}
	if p.Page != 1 {
		t.Errorf("page = %d, want 1", p.Page)
	}
	if len(p.Filters) != 0 {
		t.Errorf("filters = %v, want empty", p.Filters)
	}
}

func TestParseParamsNormalization(t *testing.T) {
	tests := []struct {
		name  string
		in    url.Values
		check func(t *testing.T, p Params)
	}{
		{
			name: "trims query",
			in:   url.Values{"q": {"  rice  "}},
			check: func(t *testing.T, p Params) {
				if p.Query != "rice" {
					t.Errorf("query = %q, want %q", p.Query, "rice")
				}
			},
		},
		{
			name: "all sentinel means no filter",
			in:   url.Values{"type": {"all"}},
			check: func(t *testing.T, p Params) {
				if _, ok := p.Filters["type"]; ok {
					t.Error("type filter should be absent for 'all'")
				}
			},
		},
		{
			name: "unknown enum value means no filter",
			in:   url.Values{"type": {"banana"}},
			check: func(t *testing.T, p Params) {
				if _, ok := p.Filters["type"]; ok {
					t.Error("type filter should be absent for unknown value")
				}
			},
		},
		{
			name: "free-string facet passes through",
			in:   url.Values{"category": {"Food"}},
			check: func(t *testing.T, p Params) {
				if p.Filters["category"] != "Food" {
					t.Errorf("category = %q, want Food", p.Filters["category"])
				}
			},
		},
		{
			name: "unknown sort falls back to default",
			in:   url.Values{"sort": {"cheapest"}},
			check: func(t *testing.T, p Params) {
				if p.Sort != "newest" {
					t.Errorf("sort = %q, want newest", p.Sort)
				}
			},
		},
		{
			name: "known sort accepted",
			in:   url.Values{"sort": {"price_asc"}},
			check: func(t *testing.T, p Params) {
				if p.Sort != "price_asc" {
					t.Errorf("sort = %q, want price_asc", p.Sort)
				}
			},
		},
		{
			name: "non-numeric page defaults to 1",
			in:   url.Values{"page": {"abc"}},
			check: func(t *testing.T, p Params) {
				if p.Page != 1 {
					t.Errorf("page = %d, want 1", p.Page)
				}
			},
		},
		{
			name: "zero page defaults to 1",
			in:   url.Values{"page": {"0"}},
			check: func(t *testing.T, p Params) {
				if p.Page != 1 {
					t.Errorf("page = %d, want 1", p.Page)
				}
			},
		},
		{
			name: "negative page defaults to 1",
			in:   url.Values{"page": {"-3"}},
			check: func(t *testing.T, p Params) {
				if p.Page != 1 {
					t.Errorf("page = %d, want 1", p.Page)
				}
			},
		},
		{
			name: "huge page clamps to MaxPage",
			in:   url.Values{"page": {"100000"}},
			check: func(t *testing.T, p Params) {
				if p.Page != MaxPage {
					t.Errorf("page = %d, want %d", p.Page, MaxPage)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, testDef.ParseParams(tt.in))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"50% off", `50\% off`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}
	for _, tt := range tests {
		if got := EscapeLike(tt.in); got != tt.want {
			t.Errorf("EscapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultDenyVisibility(t *testing.T) {
	db := setupTestDB(t)
	insertListing(t, db, "l1", "Rice", "", "", "product", "Food", "active", ptr(500), 1)
	insertListing(t, db, "l2", "Beans", "", "", "product", "Food", "active", ptr(400), 2)
	insertListing(t, db, "l3", "Garri", "", "", "product", "Food", "active", ptr(300), 3)
	insertListing(t, db, "l4", "Old phone", "", "", "product", "Gadgets", "sold", ptr(10000), 4)
	insertListing(t, db, "l5", "Hidden", "", "", "product", "Food", "inactive", nil, 5)

	page, err := Run(context.Background(), db, testDef, testDef.ParseParams(url.Values{}), scanTestRow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("total = %d, want 3 (active only)", page.Total)
	}
	for _, r := range page.Rows {
		if r.Status != "active" {
			t.Errorf("row %s has status %q, want active", r.ID, r.Status)
		}
	}

	// Explicit widening sees everything.
	p := testDef.ParseParams(url.Values{})
	p.ShowHidden = true
	page, err = Run(context.Background(), db, testDef, p, scanTestRow)
	if err != nil {
		t.Fatalf("run widened: %v", err)
	}
	if page.Total != 5 {
		t.Errorf("widened total = %d, want 5", page.Total)
	}
}

func TestSearchIsDisjunctive(t *testing.T) {
	db := setupTestDB(t)
	insertListing(t, db, "l1", "Campus hoodie", "", "", "product", "", "active", ptr(3000), 1)
	insertListing(t, db, "l2", "Plain shirt", "hoodie-adjacent look", "", "product", "", "active", ptr(2000), 2)
	insertListing(t, db, "l3", "Sneakers", "", "Hoodie Street hostel", "product", "", "active", ptr(9000), 3)
	insertListing(t, db, "l4", "Textbook", "", "", "product", "", "active", ptr(1500), 4)

	page, err := Run(context.Background(), db, testDef, testDef.ParseParams(url.Values{"q": {"hoodie"}}), scanTestRow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("total = %d, want 3 (match in any search column)", page.Total)
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	db := setupTestDB(t)
	insertListing(t, db, "l1", "50% off sneakers", "", "", "product", "", "active", ptr(5000), 1)
	insertListing(t, db, "l2", "500ml bottle", "", "", "product", "", "active", ptr(300), 2)

	// "50%" must match only the literal string, not "500ml" via the wildcard.
	page, err := Run(context.Background(), db, testDef, testDef.ParseParams(url.Values{"q": {"50% off"}}), scanTestRow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("total = %d, want 1", page.Total)
	}
	if page.Rows[0].ID != "l1" {
		t.Errorf("matched %s, want l1", page.Rows[0].ID)
	}
}

func TestFacetsCompose(t *testing.T) {
	db := setupTestDB(t)
	insertListing(t, db, "l1", "Jollof pack", "", "", "product", "Food", "active", ptr(1200), 1)
	insertListing(t, db, "l2", "Meal delivery", "", "", "service", "Food", "active", nil, 2)
	insertListing(t, db, "l3", "Phone repair", "", "", "service", "Gadgets", "active", nil, 3)

	page, err := Run(context.Background(), db, testDef,
		testDef.ParseParams(url.Values{"type": {"service"}, "category": {"Food"}}), scanTestRow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if page.Total != 1 || page.Rows[0].ID != "l2" {
		t.Errorf("got total=%d rows=%v, want only l2", page.Total, page.Rows)
	}
}

func TestPagination(t *testing.T) {
	db := setupTestDB(t)
	for i := 1; i <= 7; i++ {
		insertListing(t, db, fmt.Sprintf("l%d", i), fmt.Sprintf("Item %d", i), "", "", "product", "", "active", ptr(float64(i*100)), i)
	}

	ctx := context.Background()

	page1, err := Run(ctx, db, testDef, testDef.ParseParams(url.Values{"page": {"1"}}), scanTestRow)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1.Rows) != 3 {
		t.Errorf("page 1 rows = %d, want 3", len(page1.Rows))
	}
	if page1.Total != 7 || page1.TotalPages != 3 {
		t.Errorf("total = %d totalPages = %d, want 7/3", page1.Total, page1.TotalPages)
	}
	if page1.ShowingFrom() != 1 || page1.ShowingTo() != 3 {
		t.Errorf("showing %d-%d, want 1-3", page1.ShowingFrom(), page1.ShowingTo())
	}

	page3, err := Run(ctx, db, testDef, testDef.ParseParams(url.Values{"page": {"3"}}), scanTestRow)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page3.Rows) != 1 {
		t.Errorf("page 3 rows = %d, want 1", len(page3.Rows))
	}
	if page3.Total != page1.Total {
		t.Errorf("total changed across pages: %d vs %d", page3.Total, page1.Total)
	}
	if page3.ShowingFrom() != 7 || page3.ShowingTo() != 7 {
		t.Errorf("showing %d-%d, want 7-7", page3.ShowingFrom(), page3.ShowingTo())
	}

	// A page past the end is empty but keeps correct totals.
	page9, err := Run(ctx, db, testDef, testDef.ParseParams(url.Values{"page": {"9"}}), scanTestRow)
	if err != nil {
		t.Fatalf("page 9: %v", err)
	}
	if len(page9.Rows) != 0 {
		t.Errorf("page 9 rows = %d, want 0", len(page9.Rows))
	}
	if page9.Total != 7 || page9.TotalPages != 3 {
		t.Errorf("page 9 total = %d totalPages = %d, want 7/3", page9.Total, page9.TotalPages)
	}
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	db := setupTestDB(t)

	page, err := Run(context.Background(), db, testDef, testDef.ParseParams(url.Values{"q": {"nothing"}}), scanTestRow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if page.Total != 0 || len(page.Rows) != 0 {
		t.Errorf("total = %d rows = %d, want 0/0", page.Total, len(page.Rows))
	}
	if page.TotalPages != 1 {
		t.Errorf("totalPages = %d, want 1", page.TotalPages)
	}
	if page.ShowingFrom() != 0 {
		t.Errorf("showingFrom = %d, want 0", page.ShowingFrom())
	}
}

func TestQueryFailureIsAnError(t *testing.T) {
	db := setupTestDB(t)

	bad := testDef
	bad.Table = "no_such_table"
	if _, err := Run(context.Background(), db, bad, bad.ParseParams(url.Values{}), scanTestRow); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestSortStabilityOnTies(t *testing.T) {
	db := setupTestDB(t)
	// Three listings with the same price; secondary key is creation time
	// descending, so the newest comes first on every fetch.
	insertListing(t, db, "l-old", "Old", "", "", "product", "", "active", ptr(1000), 30)
	insertListing(t, db, "l-mid", "Mid", "", "", "product", "", "active", ptr(1000), 20)
	insertListing(t, db, "l-new", "New", "", "", "product", "", "active", ptr(1000), 10)
	insertListing(t, db, "l-cheap", "Cheap", "", "", "product", "", "active", ptr(500), 5)

	want := []string{"l-cheap", "l-new", "l-mid", "l-old"}
	for run := 0; run < 3; run++ {
		page, err := Run(context.Background(), db, testDef, testDef.ParseParams(url.Values{"sort": {"price_asc"}}), scanTestRow)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		// Page size is 3; fetch page 2 for the remainder.
		page2, err := Run(context.Background(), db, testDef, testDef.ParseParams(url.Values{"sort": {"price_asc"}, "page": {"2"}}), scanTestRow)
		if err != nil {
			t.Fatalf("run %d page 2: %v", run, err)
		}
		var got []string
		for _, r := range append(page.Rows, page2.Rows...) {
			got = append(got, r.ID)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("run %d: order = %v, want %v", run, got, want)
			}
		}
	}
}

func TestNullPricesSortLast(t *testing.T) {
	db := setupTestDB(t)
	insertListing(t, db, "l1", "Priced", "", "", "product", "", "active", ptr(100), 1)
	insertListing(t, db, "l2", "Labelled", "", "", "product", "", "active", nil, 2)

	page, err := Run(context.Background(), db, testDef, testDef.ParseParams(url.Values{"sort": {"price_asc"}}), scanTestRow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if page.Rows[0].ID != "l1" || page.Rows[1].ID != "l2" {
		t.Errorf("order = %v, want priced row before null-price row", page.Rows)
	}
}

func TestExtraConds(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db, `INSERT INTO users (id, email) VALUES ('u2', 'u2@test')`)
	mustExec(t, db, `INSERT INTO vendors (id, user_id, name) VALUES ('v2', 'u2', 'Vendor Two')`)
	insertListing(t, db, "l1", "Mine", "", "", "product", "", "inactive", nil, 1)
	mustExec(t, db, `UPDATE listings SET vendor_id = 'v2' WHERE id = 'l1'`)
	insertListing(t, db, "l2", "Theirs", "", "", "product", "", "active", nil, 2)

	p := testDef.ParseParams(url.Values{})
	p.ShowHidden = true
	p.Extra = []Cond{{Expr: "vendor_id = ?", Args: []any{"v2"}}}

	page, err := Run(context.Background(), db, testDef, p, scanTestRow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if page.Total != 1 || page.Rows[0].ID != "l1" {
		t.Errorf("got total=%d, want only the scoped vendor's listing", page.Total)
	}
}
