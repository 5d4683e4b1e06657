package types

import "time"

// Filter represents the active query predicate of a listing: free-text
// search, equality filters and an inclusive date range, plus pagination.
// The same predicate drives both the SQL listing queries and the
// change-reconciliation match against pushed rows.
type Filter struct {
	Search         string     `json:"search,omitempty"`
	Status         string     `json:"status,omitempty"`
	LabID          *uint64    `json:"lab_id,omitempty"`
	TypeID         *uint64    `json:"type_id,omitempty"`
	DateFrom       *time.Time `json:"date_from,omitempty"`
	DateTo         *time.Time `json:"date_to,omitempty"`
	Limit          uint64     `json:"limit"`
	Offset         uint64     `json:"offset"`
	WithPagination bool       `json:"with_pagination"`
}

// IsZero reports whether no predicate fields are set.
func (f Filter) IsZero() bool {
	return f.Search == "" && f.Status == "" && f.LabID == nil &&
		f.TypeID == nil && f.DateFrom == nil && f.DateTo == nil
}

// Pagination represents pagination metadata of a listing response.
type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      uint64 `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// NewPagination derives the page metadata from a window and the total row
// count reported by the listing query.
func NewPagination(total, limit, offset uint64) Pagination {
	p := Pagination{TotalCount: total, Limit: limit, Page: 1, TotalPages: 1}
	if limit == 0 {
		return p
	}
	p.Page = int(offset/limit) + 1
	p.TotalPages = int((total + limit - 1) / limit)
	return p
}
