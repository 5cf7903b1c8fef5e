package model

import "testing"

func TestPage_TotalPages(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		size  int
		want  int
	}{
		{"empty", 0, 20, 0},
		{"exact fit", 100, 20, 5},
		{"partial last page", 101, 15, 7},
		{"single item", 1, 20, 1},
		{"zero size", 10, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Page[int]{TotalCount: tc.total, Size: tc.size, Number: 1}
			if got := p.TotalPages(); got != tc.want {
				t.Errorf("TotalPages() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPage_Navigation(t *testing.T) {
	p := Page[int]{TotalCount: 101, Size: 15, Number: 1}
	if !p.HasNext() {
		t.Error("page 1 of 7 should have a next page")
	}
	if p.HasPrevious() {
		t.Error("page 1 should have no previous page")
	}

	p.Number = 7
	if p.HasNext() {
		t.Error("last page should have no next page")
	}
	if !p.HasPrevious() {
		t.Error("page 7 should have a previous page")
	}
}

func TestPage_ItemRange(t *testing.T) {
	p := Page[int]{TotalCount: 101, Size: 15, Number: 7}
	if got := p.StartItem(); got != 91 {
		t.Errorf("StartItem() = %d, want 91", got)
	}
	// The last page is short; EndItem caps at the total count.
	if got := p.EndItem(); got != 101 {
		t.Errorf("EndItem() = %d, want 101", got)
	}
}

func TestPage_EmptyResultSet(t *testing.T) {
	p := Page[int]{TotalCount: 0, Size: 20, Number: 1}
	if p.HasNext() || p.HasPrevious() {
		t.Error("empty page should have no neighbors")
	}
	if p.StartItem() != 0 || p.EndItem() != 0 {
		t.Errorf("empty page range should be 0..0, got %d..%d", p.StartItem(), p.EndItem())
	}
}
