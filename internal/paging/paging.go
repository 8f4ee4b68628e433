// Package paging holds the page/filter state of a server-paginated list and
// decides when it must be refetched.
package paging

import (
	"strconv"

	"github.com/naveenspark/taskflow/pkg/domain"
)

// Fixed page sizes.
const (
	ProjectPageSize = 6
	TaskPageSize    = 5
)

// Key identifies the data a fetch returns. Two fetches with equal keys
// return the same page.
type Key struct {
	Parent    int64
	Page      int
	Filter    domain.StatusFilter
	SortTitle bool
}

// Ticket is handed out when a fetch starts and presented when it returns.
type Ticket struct {
	Seq uint64
	Key Key
}

// List is the pagination state of one list view.
type List struct {
	Parent     int64
	Page       int // zero-indexed
	Size       int
	TotalPages int
	Filter     domain.StatusFilter
	SortTitle  bool

	seq uint64
}

// New returns a list of the given page size.
func New(size int) List {
	return List{Size: size}
}

// NewChildren returns a filterable list of the children of parent.
func NewChildren(parent int64, size int) List {
	return List{Parent: parent, Size: size, Filter: domain.FilterAll}
}

// Key returns the key of the page currently selected.
func (l *List) Key() Key {
	return Key{Parent: l.Parent, Page: l.Page, Filter: l.Filter, SortTitle: l.SortTitle}
}

// Begin starts a fetch of the current key. Any earlier ticket becomes stale.
func (l *List) Begin() Ticket {
	l.seq++
	return Ticket{Seq: l.seq, Key: l.Key()}
}

// Accept reports whether t belongs to the most recent fetch.
func (l *List) Accept(t Ticket) bool {
	return t.Seq == l.seq && t.Key == l.Key()
}

// Apply records a page the server returned for t. It reports whether the
// page was accepted and whether the list moved and needs another fetch.
// An empty page past the end clamps the list to the new last page.
func (l *List) Apply(t Ticket, totalPages, count int) (accepted, refetch bool) {
	if !l.Accept(t) {
		return false, false
	}
	if totalPages < 0 {
		totalPages = 0
	}
	l.TotalPages = totalPages
	if count == 0 && l.Page > 0 && l.Page >= totalPages {
		l.Page = max(totalPages-1, 0)
		return true, true
	}
	return true, false
}

// SetFilter changes the status filter and returns to the first page. It
// reports whether a refetch is needed.
func (l *List) SetFilter(f domain.StatusFilter) bool {
	if f == l.Filter {
		return false
	}
	l.Filter = f
	l.Page = 0
	return true
}

// CycleFilter advances the filter ALL -> PENDING -> IN_PROGRESS ->
// COMPLETED -> ALL.
func (l *List) CycleFilter() bool {
	return l.SetFilter(l.Filter.Next())
}

// ToggleSort flips title sorting and returns to the first page.
func (l *List) ToggleSort() bool {
	l.SortTitle = !l.SortTitle
	l.Page = 0
	return true
}

// PrevDisabled reports whether there is no previous page.
func (l *List) PrevDisabled() bool { return l.Page == 0 }

// NextDisabled reports whether there is no next page.
func (l *List) NextDisabled() bool { return l.Page >= l.TotalPages-1 }

// Prev moves one page back. It is a no-op on the first page.
func (l *List) Prev() bool {
	if l.PrevDisabled() {
		return false
	}
	l.Page--
	return true
}

// Next moves one page forward. It is a no-op on the last page.
func (l *List) Next() bool {
	if l.NextDisabled() {
		return false
	}
	l.Page++
	return true
}

// GoTo selects page k. It reports whether the page changed.
func (l *List) GoTo(k int) bool {
	if k == l.Page {
		return false
	}
	l.Page = k
	return true
}

// PageButton is one numbered entry of the pagination bar.
type PageButton struct {
	Index   int
	Label   string
	Current bool
}

// Controls is what the pagination bar renders.
type Controls struct {
	Hidden       bool
	PrevDisabled bool
	NextDisabled bool
	Pages        []PageButton
}

// Controls returns the pagination bar for the current state. It is hidden
// when there is at most one page.
func (l *List) Controls() Controls {
	if l.TotalPages <= 1 {
		return Controls{Hidden: true, PrevDisabled: true, NextDisabled: true}
	}
	c := Controls{
		PrevDisabled: l.PrevDisabled(),
		NextDisabled: l.NextDisabled(),
		Pages:        make([]PageButton, l.TotalPages),
	}
	for i := range c.Pages {
		c.Pages[i] = PageButton{Index: i, Label: strconv.Itoa(i + 1), Current: i == l.Page}
	}
	return c
}
