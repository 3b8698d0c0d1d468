// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package pagination

import "context"

// CursorPage is one page of results from a cursor-paginated endpoint.
type CursorPage[T any] struct {
	Items        []T
	CursorAfter  string
	CursorBefore string
}

// CursorFetch retrieves one page given a page size and the cursor returned
// by the previous page (empty on the first call).
type CursorFetch[T any] func(ctx context.Context, limit int, cursorAfter string) (CursorPage[T], error)

// CursorStream is the cursor-paginated counterpart to Stream: it terminates
// when a page returns no CursorAfter instead of when Page.Next is empty.
type CursorStream[T any] struct {
	ctx     context.Context
	fetch   CursorFetch[T]
	opts    Options
	cursor  string
	pages   int
	items   int
	done    bool
	lastErr error
}

// NewCursorStream constructs a CursorStream over fetch, bounded by opts.
func NewCursorStream[T any](ctx context.Context, fetch CursorFetch[T], opts Options) *CursorStream[T] {
	opts.PageSize = clampPageSize(opts.PageSize)
	return &CursorStream[T]{ctx: ctx, fetch: fetch, opts: opts}
}

// Err returns the error that ended the stream, if the fetch itself failed.
func (s *CursorStream[T]) Err() error { return s.lastErr }

// NextPage fetches and returns the next page, or ok=false when exhausted.
func (s *CursorStream[T]) NextPage() (page CursorPage[T], ok bool) {
	if s.done {
		return CursorPage[T]{}, false
	}
	if err := s.ctx.Err(); err != nil {
		s.done = true
		return CursorPage[T]{}, false
	}
	if s.opts.MaxPages > 0 && s.pages >= s.opts.MaxPages {
		s.done = true
		return CursorPage[T]{}, false
	}
	if s.opts.MaxItems > 0 && s.items >= s.opts.MaxItems {
		s.done = true
		return CursorPage[T]{}, false
	}
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(s.ctx); err != nil {
			s.done = true
			s.lastErr = err
			return CursorPage[T]{}, false
		}
	}

	p, err := s.fetch(s.ctx, s.opts.PageSize, s.cursor)
	if err != nil {
		s.done = true
		s.lastErr = err
		return CursorPage[T]{}, false
	}

	s.pages++
	s.items += len(p.Items)
	s.cursor = p.CursorAfter

	if s.opts.MaxItems > 0 && s.items >= s.opts.MaxItems {
		overshoot := s.items - s.opts.MaxItems
		if overshoot > 0 && overshoot < len(p.Items) {
			p.Items = p.Items[:len(p.Items)-overshoot]
		}
	}
	if p.CursorAfter == "" {
		s.done = true
	}

	return p, true
}

// Items consumes the stream and invokes yield for every element in order.
func (s *CursorStream[T]) Items(yield func(T) bool) error {
	for {
		page, ok := s.NextPage()
		if !ok {
			return s.lastErr
		}
		for _, item := range page.Items {
			if err := s.ctx.Err(); err != nil {
				s.lastErr = err
				return err
			}
			if !yield(item) {
				s.done = true
				return nil
			}
		}
	}
}
