// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package batch splits an ordered ID collection into deduplicated,
// size-limited chunks for endpoints that cap how many IDs one request may
// carry, with an optional per-chunk progress callback.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Progress reports chunking progress after each chunk is dispatched.
type Progress struct {
	CompletedBatches int
	TotalBatches     int
	CurrentBatchSize int
}

// Options configures Dispatch.
type Options struct {
	// Limiter, if non-nil, paces outbound chunk dispatches independent of
	// server-imposed 429s, consulted before each dispatchFn call.
	Limiter *rate.Limiter
}

// Chunk splits ids into chunks of at most maxSize, deduplicating by first
// occurrence and preserving order of first occurrence within and across
// chunks. maxSize must be positive.
func Chunk(ids []string, maxSize int) ([][]string, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("batch: maxSize must be positive, got %d", maxSize)
	}

	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) == 0 {
		return nil, nil
	}

	chunks := make([][]string, 0, (len(unique)+maxSize-1)/maxSize)
	for i := 0; i < len(unique); i += maxSize {
		end := i + maxSize
		if end > len(unique) {
			end = len(unique)
		}
		chunks = append(chunks, unique[i:end])
	}
	return chunks, nil
}

// Dispatch runs dispatchFn over each chunk of ids in order, invoking
// onProgress (if non-nil) after each successful dispatch. If dispatchFn
// returns an error, subsequent chunks are not attempted and the error is
// returned unchanged; effects of already-dispatched chunks are not rolled
// back. If opts.Limiter is non-nil, Dispatch waits on it before each
// dispatchFn call, so a canceled ctx also stops further dispatches.
func Dispatch(ctx context.Context, ids []string, maxSize int, dispatchFn func(chunk []string) error, onProgress func(Progress), opts Options) error {
	chunks, err := Chunk(ids, maxSize)
	if err != nil {
		return err
	}

	for i, chunk := range chunks {
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := dispatchFn(chunk); err != nil {
			return err
		}
		if onProgress != nil {
			onProgress(Progress{
				CompletedBatches: i + 1,
				TotalBatches:     len(chunks),
				CurrentBatchSize: len(chunk),
			})
		}
	}
	return nil
}
