package mutation

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// workItem is a notation tagged with its position in the batch.
type workItem struct {
	Seq      int
	Notation string
}

// classifyParallel parses notations with a pool of workers. Each result is
// written to the slot of its sequence number, so output order matches
// input order regardless of completion order. Under StopOnFirstError the
// first failure cancels the group: the producer stops issuing items and
// workers stop at the next buffered item. A cancelled ctx always returns
// its error and no labels.
func (a *Aggregator) classifyParallel(ctx context.Context, p Parser, notations []string, kind Kind) ([]Type, error) {
	workers := min(a.workers, len(notations))
	labels := make([]Type, len(notations))

	g, gctx := errgroup.WithContext(ctx)
	items := make(chan workItem, 2*workers)

	g.Go(func() error {
		defer close(items)
		for i, n := range notations {
			select {
			case items <- workItem{Seq: i, Notation: n}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var (
		mu        sync.Mutex
		collected []*NotationError
	)

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for item := range items {
				if err := gctx.Err(); err != nil {
					return err
				}
				t, err := p.Parse(item.Notation)
				if err != nil {
					nerr := &NotationError{Index: item.Seq, Notation: item.Notation, Kind: kind, Err: err}
					if a.policy == StopOnFirstError {
						return nerr
					}
					mu.Lock()
					collected = append(collected, nerr)
					mu.Unlock()
					labels[item.Seq] = Unparsed
					continue
				}
				labels[item.Seq] = t
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Cancellation after the last item was issued leaves no worker error.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Report collected failures in input order.
	sort.Slice(collected, func(i, j int) bool { return collected[i].Index < collected[j].Index })
	var errs error
	for _, e := range collected {
		errs = multierr.Append(errs, e)
	}
	return labels, errs
}
