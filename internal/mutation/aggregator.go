package mutation

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Policy controls how an aggregation reacts to unparseable notations.
type Policy int

const (
	// StopOnFirstError aborts the whole batch on the first failure and
	// returns no partial result.
	StopOnFirstError Policy = iota
	// CollectErrors labels failing positions Unparsed, keeps going, and
	// returns every failure combined into one error next to the result.
	CollectErrors
)

// String returns the CLI name of the policy.
func (p Policy) String() string {
	if p == CollectErrors {
		return "collect"
	}
	return "stop"
}

// ParsePolicy converts a CLI name into a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "stop", "fail-fast", "":
		return StopOnFirstError, true
	case "collect", "skip":
		return CollectErrors, true
	}
	return StopOnFirstError, false
}

// Aggregator classifies batches of notations and counts mutation types.
type Aggregator struct {
	resolver *Resolver
	policy   Policy
	workers  int
	logger   *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) Option {
	return func(a *Aggregator) { a.policy = p }
}

// WithWorkers sets the number of concurrent parse workers.
// Values below 2 classify sequentially.
func WithWorkers(n int) Option {
	return func(a *Aggregator) { a.workers = n }
}

// WithLogger sets the logger used to report collected failures.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates an aggregator over the given resolver.
func NewAggregator(r *Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver: r,
		policy:   StopOnFirstError,
		workers:  1,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the configured failure policy.
func (a *Aggregator) Policy() Policy {
	return a.policy
}

// ClassifyAll returns the mutation type of every notation, in input order.
//
// Under StopOnFirstError a failure returns a nil slice and the
// *NotationError of the offending entry. Under CollectErrors the slice is
// always complete, failing entries are labelled Unparsed, and the returned
// error combines every *NotationError (see multierr.Errors).
func (a *Aggregator) ClassifyAll(ctx context.Context, notations []string, kind Kind) ([]Type, error) {
	p, err := a.resolver.parserFor(kind)
	if err != nil {
		return nil, err
	}
	if len(notations) == 0 {
		return []Type{}, nil
	}

	var labels []Type
	if a.workers > 1 && len(notations) > 1 {
		labels, err = a.classifyParallel(ctx, p, notations, kind)
	} else {
		labels, err = a.classifySequential(ctx, p, notations, kind)
	}
	if labels == nil {
		return nil, err
	}

	for _, e := range multierr.Errors(err) {
		var ne *NotationError
		if errors.As(e, &ne) {
			a.logger.Warn("unparseable notation",
				zap.Int("index", ne.Index),
				zap.String("notation", ne.Notation),
				zap.Stringer("kind", ne.Kind),
				zap.Error(ne.Err))
		}
	}
	return labels, err
}

// CountTypes classifies notations and counts the resulting types.
// Under CollectErrors the table is returned together with the combined error.
func (a *Aggregator) CountTypes(ctx context.Context, notations []string, kind Kind) (*FrequencyTable, error) {
	labels, err := a.ClassifyAll(ctx, notations, kind)
	if labels == nil {
		return nil, err
	}
	return Count(labels), err
}

func (a *Aggregator) classifySequential(ctx context.Context, p Parser, notations []string, kind Kind) ([]Type, error) {
	labels := make([]Type, len(notations))
	var errs error
	for i, n := range notations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := p.Parse(n)
		if err != nil {
			nerr := &NotationError{Index: i, Notation: n, Kind: kind, Err: err}
			if a.policy == StopOnFirstError {
				return nil, nerr
			}
			errs = multierr.Append(errs, nerr)
			labels[i] = Unparsed
			continue
		}
		labels[i] = t
	}
	return labels, errs
}
