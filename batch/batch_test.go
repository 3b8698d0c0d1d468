package batch

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/time/rate"
)

func TestChunkDedupsAndPreservesOrder(t *testing.T) {
	ids := []string{"a", "b", "a", "c", "b", "d"}
	chunks, err := Chunk(ids, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("got %v, want %v", chunks, want)
	}
}

func TestChunkSizeAndCount(t *testing.T) {
	ids := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		ids = append(ids, string(rune('a'+i)))
	}
	chunks, err := Chunk(ids, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected ceil(25/10)=3 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c) > 10 {
			t.Fatalf("chunk exceeds max size: %v", c)
		}
	}
}

func TestChunkRejectsNonPositiveMaxSize(t *testing.T) {
	if _, err := Chunk([]string{"a"}, 0); err == nil {
		t.Fatal("expected error for maxSize=0")
	}
}

func TestChunkEmptyInput(t *testing.T) {
	chunks, err := Chunk(nil, 10)
	if err != nil || chunks != nil {
		t.Fatalf("expected nil, nil for empty input, got %v, %v", chunks, err)
	}
}

func TestDispatchInvokesProgressInOrder(t *testing.T) {
	var dispatched [][]string
	var progress []Progress

	err := Dispatch(context.Background(), []string{"a", "b", "c"}, 1,
		func(chunk []string) error {
			dispatched = append(dispatched, chunk)
			return nil
		},
		func(p Progress) { progress = append(progress, p) },
		Options{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatched) != 3 || len(progress) != 3 {
		t.Fatalf("expected 3 dispatches and 3 progress calls, got %d/%d", len(dispatched), len(progress))
	}
	if progress[2].CompletedBatches != 3 || progress[2].TotalBatches != 3 {
		t.Fatalf("unexpected final progress: %+v", progress[2])
	}
}

func TestDispatchHonorsLimiterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var dispatched int
	limiter := rate.NewLimiter(rate.Limit(1), 1)

	err := Dispatch(ctx, []string{"a", "b"}, 1,
		func(chunk []string) error {
			dispatched++
			return nil
		},
		nil,
		Options{Limiter: limiter},
	)
	if err == nil {
		t.Fatal("expected an error from a canceled context")
	}
	if dispatched != 0 {
		t.Fatalf("expected no dispatches once the limiter's Wait fails, got %d", dispatched)
	}
}

func TestDispatchStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var dispatched int

	err := Dispatch(context.Background(), []string{"a", "b", "c"}, 1,
		func(chunk []string) error {
			dispatched++
			if dispatched == 2 {
				return boom
			}
			return nil
		},
		nil,
		Options{},
	)
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}
	if dispatched != 2 {
		t.Fatalf("expected dispatch to stop after the failing chunk, got %d calls", dispatched)
	}
}
