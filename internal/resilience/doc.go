// Package resilience groups the fault tolerance helpers used around every
// outbound call of the digest job: retry with exponential backoff and jitter
// (package retry) and circuit breakers (package circuitbreaker).
//
//	cb := circuitbreaker.New(circuitbreaker.NewsAPIConfig())
//	err := retry.WithBackoff(ctx, retry.NewsAPIConfig(), func() error {
//	    _, err := cb.Execute(func() (interface{}, error) { return call(ctx) })
//	    return err
//	})
package resilience
