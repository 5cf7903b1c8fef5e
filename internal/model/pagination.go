package model

// Page is the paginated container returned by list queries. Number is
// 1-based. The derived values (TotalPages, HasNext, StartItem, EndItem)
// are computed from TotalCount rather than stored, so they can never
// disagree with the query that produced the page.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Number     int   `json:"page"`
	Size       int   `json:"size"`
}

// TotalPages is the number of pages needed for TotalCount items.
// An empty result set has zero pages.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 || p.TotalCount == 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages()
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool {
	return p.Number > 1 && p.TotalPages() > 0
}

// StartItem is the 1-based index of the first item on this page,
// zero when the result set is empty.
func (p Page[T]) StartItem() int64 {
	if p.TotalCount == 0 {
		return 0
	}
	return int64(p.Number-1)*int64(p.Size) + 1
}

// EndItem is the 1-based index of the last item on this page.
func (p Page[T]) EndItem() int64 {
	if p.TotalCount == 0 {
		return 0
	}
	end := int64(p.Number) * int64(p.Size)
	if end > p.TotalCount {
		end = p.TotalCount
	}
	return end
}
