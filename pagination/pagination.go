// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package pagination turns a page-fetching closure into a lazy,
// single-pass, cancellable stream of items or pages. A Stream is a
// one-shot handle: it is not restartable once exhausted.
package pagination

import (
	"context"

	"golang.org/x/time/rate"
)

// Page is one page of results from an offset-paginated endpoint.
type Page[T any] struct {
	Items    []T
	Limit    int
	Offset   int
	Total    int
	Next     string
	Previous string
}

// Fetch retrieves one page given limit/offset.
type Fetch[T any] func(ctx context.Context, limit, offset int) (Page[T], error)

// Options bounds a Stream's traversal.
type Options struct {
	// PageSize is capped at 50; zero or a negative value selects 20.
	PageSize int
	// MaxItems stops the stream once this many items have been yielded. 0
	// means unbounded.
	MaxItems int
	// MaxPages stops the stream once this many pages have been fetched. 0
	// means unbounded.
	MaxPages int
	// Limiter paces outbound fetches independent of server-side 429s.
	Limiter *rate.Limiter
}

func clampPageSize(size int) int {
	switch {
	case size <= 0:
		return 20
	case size > 50:
		return 50
	default:
		return size
	}
}

// Stream is a one-shot, cancellable sequence over pages fetched lazily.
// Use Pages to iterate full pages, or Items to iterate individual elements.
type Stream[T any] struct {
	ctx     context.Context
	fetch   Fetch[T]
	opts    Options
	offset  int
	pages   int
	items   int
	done    bool
	lastErr error
}

// NewStream constructs a Stream over fetch, bounded by opts.
func NewStream[T any](ctx context.Context, fetch Fetch[T], opts Options) *Stream[T] {
	opts.PageSize = clampPageSize(opts.PageSize)
	return &Stream[T]{ctx: ctx, fetch: fetch, opts: opts}
}

// Err returns the error that ended the stream, if the fetch itself failed.
// A natural end of data (no next page, or a bound reached) leaves Err nil.
func (s *Stream[T]) Err() error { return s.lastErr }

// NextPage fetches and returns the next page, or ok=false when the stream
// is exhausted (by end-of-data, a bound, cancellation, or a prior error).
func (s *Stream[T]) NextPage() (page Page[T], ok bool) {
	if s.done {
		return Page[T]{}, false
	}
	if err := s.ctx.Err(); err != nil {
		s.done = true
		return Page[T]{}, false
	}
	if s.opts.MaxPages > 0 && s.pages >= s.opts.MaxPages {
		s.done = true
		return Page[T]{}, false
	}
	if s.opts.MaxItems > 0 && s.items >= s.opts.MaxItems {
		s.done = true
		return Page[T]{}, false
	}
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(s.ctx); err != nil {
			s.done = true
			s.lastErr = err
			return Page[T]{}, false
		}
	}

	p, err := s.fetch(s.ctx, s.opts.PageSize, s.offset)
	if err != nil {
		s.done = true
		s.lastErr = err
		return Page[T]{}, false
	}

	s.pages++
	s.items += len(p.Items)
	s.offset += len(p.Items)

	if s.opts.MaxItems > 0 && s.items >= s.opts.MaxItems {
		overshoot := s.items - s.opts.MaxItems
		if overshoot > 0 && overshoot < len(p.Items) {
			p.Items = p.Items[:len(p.Items)-overshoot]
		}
	}
	if p.Next == "" {
		s.done = true
	}

	return p, true
}

// Items consumes the stream and invokes yield for every element in order,
// honoring backpressure (a new page is only fetched once yield has
// returned for every item of the previous page) and cancellation. Returning
// false from yield stops the stream early without error.
func (s *Stream[T]) Items(yield func(T) bool) error {
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
