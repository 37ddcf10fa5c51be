// Package paging provides stable, clamped pagination over sorted
// collections.
//
// Each logical list on the dashboard (active sessions, history
// sessions, the all-users table) carries its own State so clamping one
// list never moves another's cursor.
package paging

// DefaultPageSize is used when a configured page size is invalid.
const DefaultPageSize = 10

// State is the mutable pagination cursor for one logical list.
//
// Current is 1-based and re-clamped on every Slice call; the clamped
// value written back to the State is the authoritative page number.
type State struct {
	// PageSize is the number of items per page.
	PageSize int

	// Current is the 1-based current page.
	Current int
}

// NewState creates a pagination state on page 1 with a resolved page
// size.
func NewState(pageSize int) *State {
	return &State{
		PageSize: ResolvePageSize(pageSize),
		Current:  1,
	}
}

// Page is one rendered page slice.
type Page[T any] struct {
	// Items is the visible page, at most PageSize elements.
	Items []T

	// Total is the full collection size.
	Total int

	// TotalPages is max(1, ceil(Total/PageSize)).
	TotalPages int

	// Current is the clamped 1-based page number.
	Current int

	// PageSize is the resolved page size.
	PageSize int
}

// ResolvePageSize returns a positive page size, falling back to
// DefaultPageSize for non-positive input.
func ResolvePageSize(v int) int {
	if v <= 0 {
		return DefaultPageSize
	}
	return v
}

// TotalPages returns max(1, ceil(total/pageSize)). An empty collection
// still has one (empty) page.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage clamps a requested page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Slice cuts the current page out of items and writes the clamped page
// number back into st. Callers must treat the returned Current (equal
// to st.Current after the call) as the page number from here on; there
// is no separate "requested page".
func Slice[T any](items []T, st *State) Page[T] {
	pageSize := ResolvePageSize(st.PageSize)

	total := len(items)
	totalPages := TotalPages(total, pageSize)

	st.Current = ClampPage(st.Current, totalPages)

	start := (st.Current - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Total:      total,
		TotalPages: totalPages,
		Current:    st.Current,
		PageSize:   pageSize,
	}
}
