package listing

import (
	"time"

	"github.com/abelbrown/userdesk/internal/user"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 5

// PageSizeOptions are the page sizes the console offers.
var PageSizeOptions = []int{5, 10, 25, 50}

// Status narrows the listing by the active flag.
type Status int

const (
	StatusAll Status = iota
	StatusActive
	StatusInactive
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "deactivated"
	default:
		return "all"
	}
}

// Next cycles all -> active -> deactivated -> all.
func (s Status) Next() Status {
	return (s + 1) % 3
}

// Active returns the flag value to filter on. ok is false for StatusAll.
func (s Status) Active() (active bool, ok bool) {
	switch s {
	case StatusActive:
		return true, true
	case StatusInactive:
		return false, true
	default:
		return false, false
	}
}

// Filter is the predicate sent with every list request. Empty strings and
// nil dates mean "no constraint". CreatedFrom <= CreatedTo is not checked.
type Filter struct {
	ID          string
	Name        string
	Status      Status
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return f.ID == "" && f.Name == "" && f.Status == StatusAll && f.CreatedFrom == nil && f.CreatedTo == nil
}

// FilterPatch is a partial filter update. Nil fields keep their current
// value; the Clear flags drop a date bound.
type FilterPatch struct {
	ID          *string
	Name        *string
	Status      *Status
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	ClearCreatedFrom bool
	ClearCreatedTo   bool
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

// debounced reports whether the patch touches a text-bearing field.
func (p FilterPatch) debounced() bool {
	return p.ID != nil || p.Name != nil ||
		p.CreatedFrom != nil || p.CreatedTo != nil ||
		p.ClearCreatedFrom || p.ClearCreatedTo
}

// immediate reports whether the patch must bypass the debounce gate.
// An empty patch counts as immediate so it still produces a fetch.
func (p FilterPatch) immediate() bool {
	return p.Status != nil || !p.debounced()
}

// apply returns f with p merged in. Dates are copied so later changes to
// the caller's values cannot leak into controller state.
func (f Filter) apply(p FilterPatch) Filter {
	if p.ID != nil {
		f.ID = *p.ID
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.ClearCreatedFrom {
		f.CreatedFrom = nil
	}
	if p.CreatedFrom != nil {
		t := *p.CreatedFrom
		f.CreatedFrom = &t
	}
	if p.ClearCreatedTo {
		f.CreatedTo = nil
	}
	if p.CreatedTo != nil {
		t := *p.CreatedTo
		f.CreatedTo = &t
	}
	return f
}

// PageRequest is the pagination cursor.
type PageRequest struct {
	Index int
	Size  int
}

// Offset is the index of the first record on the page.
func (p PageRequest) Offset() int {
	return p.Index * p.Size
}

// ResultPage is one page of records plus the total matching the filter.
type ResultPage struct {
	Items      []user.User
	TotalCount int64
}

// PageCount returns how many pages of the given size cover TotalCount.
func (r ResultPage) PageCount(size int) int {
	if size <= 0 || r.TotalCount <= 0 {
		return 0
	}
	return int((r.TotalCount + int64(size) - 1) / int64(size))
}
