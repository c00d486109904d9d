// Package breaker implements a per-key circuit breaker.
//
// A Breaker tracks the outcomes of recent calls for each key over a
// rolling count window. When the failure rate over that window reaches
// the configured threshold (and enough samples exist to trust it), the
// key's circuit opens and calls are rejected without being attempted.
// After the reset timeout a single probe call is admitted; its outcome
// decides whether the circuit closes again or re-opens.
//
// The breaker is an admission gate, not a wrapper: callers ask for
// admission, run the work themselves, and report the outcome.
//
//	b := breaker.New(breaker.Config{
//	    FailureThreshold: 0.5,
//	    MinSamples:       10,
//	    ResetTimeout:     30 * time.Second,
//	})
//
//	if err := b.Admit("payments"); err != nil {
//	    return err // breaker.ErrOpen
//	}
//	if err := callPayments(ctx); err != nil {
//	    b.ReportFailure("payments")
//	    return err
//	}
//	b.ReportSuccess("payments")
//
// Rejected calls must not be reported: only attempted work feeds the
// window, so a storm of rejections can never open a closed circuit by
// itself.
package breaker
