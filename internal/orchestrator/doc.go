// Package orchestrator owns the backing services of a dashtrack run.
//
// New starts every configured service in order. For each one it logs the
// attempt, starts it, logs whether it was started or found already running
// and then waits for a healthy probe with exponential backoff bounded by
// Config.HealthTimeout. If anything fails, the services started so far are
// stopped in reverse order before the error is returned; an unhealthy
// service surfaces as services.ServiceUnhealthyError.
//
// Teardown stops the started services in reverse order exactly once. Stop
// failures are logged and teardown moves on. Most callers should not call
// New and Teardown directly but use With, which tears down on every exit
// path including panics:
//
//	err := orchestrator.With(ctx, cfg, func(o *orchestrator.Orchestrator) error {
//	    return o.Run(ctx, func(ctx context.Context, conn services.Connection) error {
//	        client := conn.(*redis.Client)
//	        return client.Set(ctx, "key", "value", 0).Err()
//	    })
//	})
//
// With Config.StrictStart set, finding a service already running aborts
// construction with services.ServiceAlreadyRunningError and leaves that
// instance untouched. By default it is reused with a warning.
package orchestrator
