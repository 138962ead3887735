// Package merge provides the priority fan-in used to combine the per-source
// content streams into one sequence.
package merge

import (
	"context"
	"iter"
)

// completion is the result of one pull from a source.
type completion[T any] struct {
	source int
	item   T
	err    error
	done   bool
}

// Priority interleaves sources into a single lazy sequence.
//
// Every item of every source is yielded exactly once, as soon as its source
// produces it. When several sources have an item ready at the same time the
// source with the lowest index wins. A source that is exhausted is dropped
// without affecting the others; the sequence ends once all of them are
// exhausted.
//
// Each source is pulled from its own goroutine and has at most one pull in
// flight. Stopping the range loop early cancels the pullers: a pull already
// in progress is allowed to finish and its result is discarded. Errors
// yielded by a source are passed through unchanged. If ctx is cancelled the
// sequence yields ctx.Err() once and ends.
func Priority[T any](ctx context.Context, sources ...iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if len(sources) == 0 {
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		completions := make(chan completion[T], len(sources))
		resume := make([]chan struct{}, len(sources))
		for i, src := range sources {
			resume[i] = make(chan struct{}, 1)
			go pull(ctx, i, src, completions, resume[i])
		}

		ready := make([]*completion[T], len(sources))
		live := len(sources)
		pending := 0

		for live > 0 {
			if pending == 0 {
				select {
				case c := <-completions:
					ready[c.source] = &c
					pending++
				case <-ctx.Done():
					var zero T
					yield(zero, ctx.Err())
					return
				}
			}
			pending += drain(completions, ready)

			i := lowestReady(ready)
			c := ready[i]
			ready[i] = nil
			pending--

			if c.done {
				live--
				continue
			}

			// Ask for the next item before handing this one over so the
			// source works while the caller does.
			resume[i] <- struct{}{}
			if !yield(c.item, c.err) {
				return
			}
		}
	}
}

// drain moves every completion that is already available into ready
// without blocking and returns how many it moved.
func drain[T any](completions <-chan completion[T], ready []*completion[T]) int {
	n := 0
	for {
		select {
		case c := <-completions:
			ready[c.source] = &c
			n++
		default:
			return n
		}
	}
}

// lowestReady returns the lowest source index holding a completion,
// or -1 if none does.
func lowestReady[T any](ready []*completion[T]) int {
	for i, c := range ready {
		if c != nil {
			return i
		}
	}
	return -1
}

// pull drives one source. It delivers one completion at a time and waits
// for a resume signal before pulling again.
func pull[T any](
	ctx context.Context,
	index int,
	src iter.Seq2[T, error],
	completions chan<- completion[T],
	resume <-chan struct{},
) {
	next, stop := iter.Pull2(src)
	defer stop()

	for {
		item, err, ok := next()
		c := completion[T]{source: index, item: item, err: err, done: !ok}

		select {
		case completions <- c:
		case <-ctx.Done():
			return
		}
		if !ok {
			return
		}

		select {
		case <-resume:
		case <-ctx.Done():
			return
		}
	}
}
