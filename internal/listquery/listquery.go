// Package listquery turns user-supplied filter/sort/pagination parameters
// into SQL list queries. Explore listings, the vendor directory, study
// materials and practice history all ride the same engine with different
// Definitions.
package listquery

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Scanner matches both *sql.Row and *sql.Rows.
type Scanner = interface{ Scan(...any) error }

const (
	// MaxPage bounds the page parameter; anything larger is clamped.
	MaxPage = 999

	// DefaultPageSize is used when a Definition does not set its own.
	DefaultPageSize = 20
)

// Filter maps one query-string parameter onto an equality predicate.
// When Allowed is non-empty, values outside it are silently treated as
// "no filter" — never an error.
type Filter struct {
	Param   string
	Column  string
	Allowed []string
}

// Definition describes how one entity's list endpoint maps request
// parameters onto SQL.
type Definition struct {
	Table         string
	Columns       string            // select list
	SearchColumns []string          // ORed LIKE columns for q
	Filters       []Filter          // AND-composed facets
	Sorts         map[string]string // sort key -> ORDER BY expression
	DefaultSort   string
	TieBreak      string // appended to every ORDER BY for stable pagination
	Visibility    string // default-deny predicate, e.g. "status = 'active'"
	PageSize      int
}

// Cond is an extra predicate a trusted caller ANDs into the query, e.g.
// scoping "my listings" to the owning vendor.
type Cond struct {
	Expr string
	Args []any
}

// Params is a normalized, validated parameter set. Build one with
// ParseParams; ShowHidden and Extra are set only by trusted callers, never
// from the query string.
type Params struct {
	Query      string
	Filters    map[string]string
	Sort       string
	Page       int
	ShowHidden bool
	Extra      []Cond
}

// Page is one page of results plus the exact total for the filter set.
type Page[T any] struct {
	Rows       []T `json:"rows"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`

	pageSize int
}

// ShowingFrom returns the 1-indexed position of the first row on this page,
// or 0 when the result set is empty.
func (p *Page[T]) ShowingFrom() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Page-1)*p.pageSize + 1
}

// ShowingTo returns the 1-indexed position of the last row on this page.
func (p *Page[T]) ShowingTo() int {
	to := p.Page * p.pageSize
	if to > p.Total {
		to = p.Total
	}
	return to
}

// ParseParams normalizes raw query-string values against the definition.
// Unknown filter values and sort keys fall back rather than erroring, and
// page is clamped to [1, MaxPage].
func (d Definition) ParseParams(v url.Values) Params {
	p := Params{
		Query:   strings.TrimSpace(v.Get("q")),
		Filters: make(map[string]string),
		Sort:    d.DefaultSort,
		Page:    1,
	}

	for _, f := range d.Filters {
		val := v.Get(f.Param)
		if val == "" || val == "all" {
			continue
		}
		if len(f.Allowed) > 0 && !contains(f.Allowed, val) {
			continue
		}
		p.Filters[f.Param] = val
	}

	if s := v.Get("sort"); s != "" {
		if _, ok := d.Sorts[s]; ok {
			p.Sort = s
		}
	}

	if n, err := strconv.Atoi(v.Get("page")); err == nil && n >= 1 {
		p.Page = n
		if p.Page > MaxPage {
			p.Page = MaxPage
		}
	}

	return p
}

// EscapeLike escapes LIKE metacharacters so user input matches literally
// instead of acting as wildcards.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (d Definition) pageSize() int {
	if d.PageSize > 0 {
		return d.PageSize
	}
	return DefaultPageSize
}

// build assembles the WHERE and ORDER BY clauses for the given params.
// The search predicate is a single disjunction across SearchColumns; all
// facets, visibility and extra conditions AND together.
func (d Definition) build(p Params) (where string, args []any, orderBy string) {
	var conds []string

	if !p.ShowHidden && d.Visibility != "" {
		conds = append(conds, d.Visibility)
	}

	if p.Query != "" && len(d.SearchColumns) > 0 {
		pattern := "%" + EscapeLike(p.Query) + "%"
		var likes []string
		for _, col := range d.SearchColumns {
			likes = append(likes, col+` LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		conds = append(conds, "("+strings.Join(likes, " OR ")+")")
	}

	for _, f := range d.Filters {
		val, ok := p.Filters[f.Param]
		if !ok {
			continue
		}
		conds = append(conds, f.Column+" = ?")
		args = append(args, val)
	}

	for _, c := range p.Extra {
		conds = append(conds, c.Expr)
		args = append(args, c.Args...)
	}

	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	order, ok := d.Sorts[p.Sort]
	if !ok {
		order = d.Sorts[d.DefaultSort]
	}
	orderBy = " ORDER BY " + order
	if d.TieBreak != "" {
		orderBy += ", " + d.TieBreak
	}

	return where, args, orderBy
}

// Run executes the count and page queries for the given params and returns
// the page of rows with exact totals. A page past the end returns empty
// rows with correct totals; a backend failure returns an error so callers
// can distinguish "no matches" from "query failed".
func Run[T any](ctx context.Context, db *sql.DB, d Definition, p Params, scan func(Scanner) (T, error)) (*Page[T], error) {
	where, args, orderBy := d.build(p)
	size := d.pageSize()

	var total int
	countQuery := `SELECT COUNT(*) FROM ` + d.Table + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", d.Table, err)
	}

	query := `SELECT ` + d.Columns + ` FROM ` + d.Table + where + orderBy + ` LIMIT ? OFFSET ?`
	rowArgs := append(append([]any{}, args...), size, (p.Page-1)*size)

	rows, err := db.QueryContext(ctx, query, rowArgs...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.Table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", d.Table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", d.Table, err)
	}

	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	return &Page[T]{
		Rows:       out,
		Total:      total,
		Page:       p.Page,
		TotalPages: totalPages,
		pageSize:   size,
	}, nil
}
