package models

import "testing"

func TestNormalize(t *testing.T) {

	page, err := PageRequest{Page: 0, PageSize: 10}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("page 0 should clamp to 1, got %d", page.Page)
	}

	page, err = PageRequest{Page: -3, PageSize: 10}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("negative page should clamp to 1, got %d", page.Page)
	}

	_, err = PageRequest{Page: 1, PageSize: 0}.Normalize()
	if err != ErrInvalidPageSize {
		t.Errorf("page size 0: got %v, want %v", err, ErrInvalidPageSize)
	}
}

func TestSkip(t *testing.T) {

	tests := []struct {
		page int64
		size int64
		want int64
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 10, 20},
		{4, 25, 75},
	}

	for _, tt := range tests {
		got := PageRequest{Page: tt.page, PageSize: tt.size}.Skip()
		if got != tt.want {
			t.Errorf("skip(page %d, size %d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestOverfetchLimit(t *testing.T) {

	got := PageRequest{Page: 1, PageSize: 10}.OverfetchLimit()
	if got != 11 {
		t.Errorf("overfetch limit = %d, want 11", got)
	}
}

// 23 items, page size 10: pages 1 and 2 are full, page 3 holds the rest
func TestHasNextByCount(t *testing.T) {

	const total = 23

	page1, _ := PageRequest{Page: 1, PageSize: 10}.Normalize()
	if !HasNextByCount(total, page1.Skip(), 10) {
		t.Errorf("page 1 of 23 should have a next page")
	}

	page3, _ := PageRequest{Page: 3, PageSize: 10}.Normalize()
	if HasNextByCount(total, page3.Skip(), 3) {
		t.Errorf("page 3 of 23 should be the last page")
	}

	// beyond the end: empty result, no next page
	page4, _ := PageRequest{Page: 4, PageSize: 10}.Normalize()
	if HasNextByCount(total, page4.Skip(), 0) {
		t.Errorf("page 4 of 23 should not have a next page")
	}

	// exact boundary: 20 items, page 2 ends the list
	if HasNextByCount(20, 10, 10) {
		t.Errorf("20 items should end on page 2")
	}
}
