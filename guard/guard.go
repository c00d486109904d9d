package guard

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bastionlib/bastion/breaker"
	"github.com/bastionlib/bastion/bulkhead"
	"github.com/bastionlib/bastion/observe"
	"github.com/bastionlib/bastion/ratelimit"
)

// Guard composes a rate limiter, a bulkhead pool set, and a circuit
// breaker around arbitrary units of work, keyed by operation name.
//
// Each primitive is optional; a missing one is simply skipped. The
// fixed order of checks is: rate limiter, bulkhead admission, circuit
// breaker gate, then the work itself. Cheap rejections come first: a
// rate-limited call never spends a concurrency slot, and a bulkhead
// rejection never touches the breaker.
type Guard struct {
	breaker     *breaker.Breaker
	limiter     ratelimit.Limiter
	pools       *bulkhead.Set
	defaultPool string
	observer    *observe.Observer
	metrics     observe.Metrics

	stats *statsMap
}

// Option configures a Guard.
type Option func(*Guard)

// WithBreaker sets the circuit breaker the guard gates calls through.
func WithBreaker(b *breaker.Breaker) Option {
	return func(g *Guard) {
		g.breaker = b
	}
}

// WithLimiter sets the per-key rate limiter.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(g *Guard) {
		g.limiter = l
	}
}

// WithPools sets the bulkhead pool set.
func WithPools(s *bulkhead.Set) Option {
	return func(g *Guard) {
		g.pools = s
	}
}

// WithDefaultPool sets the pool Execute submits to. Without it,
// Execute runs work directly and only ExecuteIn uses the bulkhead.
func WithDefaultPool(name string) Option {
	return func(g *Guard) {
		g.defaultPool = name
	}
}

// WithObserver attaches telemetry. Without it, the guard records
// nothing.
func WithObserver(obs *observe.Observer) Option {
	return func(g *Guard) {
		g.observer = obs
	}
}

// New creates a Guard. Primitives are owned by the caller and may be
// shared between guards; the guard never mutates their internals
// except through their public operations.
func New(opts ...Option) (*Guard, error) {
	g := &Guard{
		observer: observe.Noop(),
		metrics:  observe.NoopMetrics{},
		stats:    newStatsMap(),
	}
	for _, opt := range opts {
		opt(g)
	}

	m, err := observe.NewMetrics(g.observer.Meter())
	if err != nil {
		return nil, err
	}
	g.metrics = m

	return g, nil
}

// Execute runs work for key under the default pool (or directly when
// no default pool is configured). See ExecuteIn.
func (g *Guard) Execute(ctx context.Context, key string, work func(context.Context) error) error {
	return g.ExecuteIn(ctx, key, g.defaultPool, work)
}

// ExecuteIn runs work for key under the named bulkhead pool.
//
// Exactly one outcome occurs per call:
//   - nil: the work ran and succeeded.
//   - *RateLimitError: rejected before spending anything; carries a
//     RetryAfter hint.
//   - bulkhead.ErrPoolNotFound, bulkhead.ErrOverloaded: rejected at
//     admission; the work never ran.
//   - breaker.ErrOpen: rejected by the circuit gate; the work never
//     ran and the rejection is not counted as a breaker failure.
//   - context.Canceled / context.DeadlineExceeded while the work never
//     started (the caller gave up waiting in the bulkhead queue): the
//     call counts as cancelled, not as a failure.
//   - any other error: the work ran and failed; the error is returned
//     verbatim and reported to the breaker.
//
// A deadline on the work is the caller's concern: wrap ctx with
// context.WithTimeout and return ctx.Err() from the work, which then
// counts as a failure like any other.
func (g *Guard) ExecuteIn(ctx context.Context, key, pool string, work func(context.Context) error) error {
	start := time.Now()

	ctx, span := g.observer.Tracer().Start(ctx, "guard.execute", trace.WithAttributes(
		attribute.String("guard.key", key),
		attribute.String("guard.pool", pool),
	))
	defer span.End()

	if g.limiter != nil {
		d := g.limiter.Allow(key)
		if !d.Allowed {
			err := &RateLimitError{Key: key, RetryAfter: d.RetryAfter, ResetAt: d.ResetAt}
			g.finish(ctx, span, key, pool, observe.OutcomeRejectedLimiter, start, err)
			return err
		}
	}

	var ran atomic.Bool
	gated := g.gate(key, &ran, work)

	var err error
	if g.pools != nil && pool != "" {
		err = g.pools.Execute(ctx, pool, gated)
	} else {
		err = gated(ctx)
	}

	outcome := classify(err, ran.Load())
	g.finish(ctx, span, key, pool, outcome, start, err)
	return err
}

// gate wraps work with the circuit breaker admission/report cycle. It
// runs inside the bulkhead slot so an already-queued call still honors
// a breaker that opened while it waited. ran records whether the work
// itself started, distinguishing a cancelled queue wait from a failure.
func (g *Guard) gate(key string, ran *atomic.Bool, work func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if g.breaker != nil {
			if err := g.breaker.Admit(key); err != nil {
				return err
			}
		}
		ran.Store(true)
		err := work(ctx)
		if g.breaker != nil {
			if err != nil {
				g.breaker.ReportFailure(key)
			} else {
				g.breaker.ReportSuccess(key)
			}
		}
		return err
	}
}

func classify(err error, ran bool) string {
	switch {
	case err == nil:
		return observe.OutcomeSuccess
	case errors.Is(err, breaker.ErrOpen):
		return observe.OutcomeRejectedBreaker
	case errors.Is(err, bulkhead.ErrPoolNotFound), errors.Is(err, bulkhead.ErrOverloaded):
		return observe.OutcomeRejectedBulkhead
	case !ran && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		// The caller's context ended before the work started. A context
		// error returned by the work itself still counts as a failure.
		return observe.OutcomeCancelled
	default:
		return observe.OutcomeFailure
	}
}

func (g *Guard) finish(ctx context.Context, span trace.Span, key, pool, outcome string, start time.Time, err error) {
	g.stats.record(key, outcome)
	g.metrics.RecordExecution(ctx, key, pool, outcome, time.Since(start))
	span.SetAttributes(attribute.String("guard.outcome", outcome))

	switch outcome {
	case observe.OutcomeRejectedLimiter, observe.OutcomeRejectedBulkhead, observe.OutcomeRejectedBreaker:
		g.observer.Logger().Debug(ctx, "call rejected",
			observe.String("key", key),
			observe.String("outcome", outcome),
			observe.Err(err),
		)
	}
}

// StateChangeHook returns a function suitable for breaker.Config's
// OnStateChange that logs and counts transitions through obs.
func StateChangeHook(obs *observe.Observer) func(key string, from, to breaker.State) {
	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		metrics = observe.NoopMetrics{}
	}
	return func(key string, from, to breaker.State) {
		ctx := context.Background()
		metrics.RecordTransition(ctx, key, from.String(), to.String())
		obs.Logger().Info(ctx, "circuit state changed",
			observe.String("key", key),
			observe.String("from", from.String()),
			observe.String("to", to.String()),
		)
	}
}
