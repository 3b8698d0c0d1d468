package pagination

import (
	"context"
	"testing"
)

func cursorFetchFixture(pages [][]int) CursorFetch[int] {
	return func(ctx context.Context, limit int, cursorAfter string) (CursorPage[int], error) {
		idx := 0
		if cursorAfter != "" {
			idx = int(cursorAfter[0] - '0')
		}
		if idx >= len(pages) {
			return CursorPage[int]{}, nil
		}
		next := ""
		if idx+1 < len(pages) {
			next = string(rune('0' + idx + 1))
		}
		return CursorPage[int]{Items: pages[idx], CursorAfter: next}, nil
	}
}

func TestCursorStreamTerminatesOnEmptyCursor(t *testing.T) {
	s := NewCursorStream(context.Background(), cursorFetchFixture([][]int{{1, 2}, {3, 4}}), Options{PageSize: 2})
	var got []int
	err := s.Items(func(v int) bool {
		got = append(got, v)
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 items across 2 pages, got %d", len(got))
	}
}

func TestCursorStreamStopsAtMaxPages(t *testing.T) {
	s := NewCursorStream(context.Background(), cursorFetchFixture([][]int{{1}, {2}, {3}}), Options{PageSize: 1, MaxPages: 2})

	pages := 0
	for {
		_, ok := s.NextPage()
		if !ok {
			break
		}
		pages++
	}
	if pages != 2 {
		t.Fatalf("expected exactly 2 pages, got %d", pages)
	}
}
