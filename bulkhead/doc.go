// Package bulkhead isolates concurrency budgets across call classes.
//
// A Set holds named pools, each with a fixed concurrency cap and a FIFO
// queue for work waiting on a slot. One saturated pool cannot starve
// another: the only shared resource is the pool you submit to.
//
//	pools := bulkhead.New(
//	    bulkhead.PoolConfig{Name: "critical", MaxConcurrency: 3},
//	    bulkhead.PoolConfig{Name: "background", MaxConcurrency: 2, QueueCapacity: 100},
//	)
//
//	task, err := pools.Submit(ctx, "critical", func(ctx context.Context) error {
//	    return doWork(ctx)
//	})
//	if err != nil {
//	    return err // bulkhead.ErrPoolNotFound or bulkhead.ErrOverloaded
//	}
//	return task.Wait(ctx)
//
// Failures propagate through the Task exactly like successes and free
// the slot the same way. Queued work whose submission context is
// cancelled before it starts resolves with the context error and never
// runs; work already running is not interrupted.
package bulkhead
