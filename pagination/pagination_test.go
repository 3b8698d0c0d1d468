package pagination

import (
	"context"
	"errors"
	"testing"
)

func fetchFixture(totalItems, pageSize int) Fetch[int] {
	return func(ctx context.Context, limit, offset int) (Page[int], error) {
		if offset >= totalItems {
			return Page[int]{}, nil
		}
		end := offset + limit
		if end > totalItems {
			end = totalItems
		}
		items := make([]int, 0, end-offset)
		for i := offset; i < end; i++ {
			items = append(items, i)
		}
		next := ""
		if end < totalItems {
			next = "has-more"
		}
		return Page[int]{Items: items, Limit: limit, Offset: offset, Total: totalItems, Next: next}, nil
	}
}

func TestItemsVisitsEachOnceInOrder(t *testing.T) {
	s := NewStream(context.Background(), fetchFixture(25, 10), Options{PageSize: 10})

	var got []int
	err := s.Items(func(v int) bool {
		got = append(got, v)
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 25 {
		t.Fatalf("expected 25 items, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("expected ordered items, got %v at index %d", v, i)
		}
	}
}

func TestStreamStopsAtMaxItems(t *testing.T) {
	s := NewStream(context.Background(), fetchFixture(100, 10), Options{PageSize: 10, MaxItems: 15})

	var got []int
	_ = s.Items(func(v int) bool {
		got = append(got, v)
		return true
	})
	if len(got) != 15 {
		t.Fatalf("expected exactly 15 items, got %d", len(got))
	}
}

func TestStreamStopsAtMaxPages(t *testing.T) {
	s := NewStream(context.Background(), fetchFixture(100, 10), Options{PageSize: 10, MaxPages: 2})

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

func TestStreamEarlyTerminationStopsConsumer(t *testing.T) {
	s := NewStream(context.Background(), fetchFixture(100, 10), Options{PageSize: 10})

	var got []int
	_ = s.Items(func(v int) bool {
		got = append(got, v)
		return len(got) < 3
	})
	if len(got) != 3 {
		t.Fatalf("expected consumer to stop after 3 items, got %d", len(got))
	}
}

func TestStreamForwardsFetchErrorOnce(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	s := NewStream(context.Background(), func(ctx context.Context, limit, offset int) (Page[int], error) {
		calls++
		return Page[int]{}, boom
	}, Options{PageSize: 10})

	_, ok := s.NextPage()
	if ok {
		t.Fatal("expected stream to end on fetch error")
	}
	if s.Err() != boom {
		t.Fatalf("expected Err() to return the fetch error, got %v", s.Err())
	}
	// Stream is exhausted; a further call must not re-invoke fetch.
	_, ok = s.NextPage()
	if ok {
		t.Fatal("expected stream to remain exhausted after an error")
	}
	if calls != 1 {
		t.Fatalf("expected fetch to be invoked once, got %d", calls)
	}
}

func TestStreamRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStream(ctx, fetchFixture(100, 10), Options{PageSize: 10})
	_, ok := s.NextPage()
	if ok {
		t.Fatal("expected canceled context to end the stream immediately")
	}
}

func TestPageSizeClamping(t *testing.T) {
	if got := clampPageSize(0); got != 20 {
		t.Fatalf("expected default 20, got %d", got)
	}
	if got := clampPageSize(500); got != 50 {
		t.Fatalf("expected clamp to 50, got %d", got)
	}
	if got := clampPageSize(5); got != 5 {
		t.Fatalf("expected 5 unchanged, got %d", got)
	}
}
