package models

// Paginated list queries share the same shape: a 1-indexed page, a page
// size and a hasNext flag in the result. Two strategies determine hasNext:
//
//  1. count-then-fetch: one CountDocuments per query, hasNext derived via
//     HasNextByCount. Cheap for small collections but not race-free when
//     documents are inserted between the count and the fetch.
//  2. over-fetch: read PageSize+1 documents and trim the extra one.
//     Race-free within the single query at the cost of one extra document.
//
// Every query documents which strategy it uses at its call site.

// DefaultPageSize applies when a client omits the page size
const DefaultPageSize = 10

// PageRequest carries the client's paging parameters
type PageRequest struct {
	Page     int64
	PageSize int64
}

// Normalize clamps the page number to 1. A non-positive page size is
// rejected since it can only come from a broken caller, not from user input.
func (p PageRequest) Normalize() (PageRequest, error) {
	if p.PageSize <= 0 {
		return p, ErrInvalidPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p, nil
}

// Skip returns the number of documents to skip for the requested page
func (p PageRequest) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// OverfetchLimit returns the fetch limit for the over-fetch strategy
// (one extra document indicates another page)
func (p PageRequest) OverfetchLimit() int64 {
	return p.PageSize + 1
}

// HasNextByCount decides hasNext for the count-then-fetch strategy
func HasNextByCount(total int64, skip int64, returned int) bool {
	return total > skip+int64(returned)
}
