// Package health provides liveness and readiness checks.
//
// # Overview
//
// The health package implements the probes behind the server's /health
// and /ready endpoints:
//
//   - /health: liveness - the process is up; never consults dependencies
//   - /ready: readiness - every registered dependency check passes
//
// Checks run concurrently with a per-check timeout, so one slow
// dependency cannot stall the probe. Any failing check degrades the
// aggregate status to "degraded"; the server maps that to a 503 so load
// balancers stop routing.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	checker.RegisterCheck("store", func(ctx context.Context) error {
//	    _, err := st.FindPending(ctx)
//	    return err
//	})
//	checker.RegisterCheck("provider", func(ctx context.Context) error {
//	    if !prov.CheckHealth(ctx) {
//	        return errors.New("configuration repository unreachable")
//	    }
//	    return nil
//	})
//
//	status := checker.CheckReadiness(ctx)
//
// # Example Response
//
// Readiness with a failing dependency:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "store": {"status": "ok", "duration_ms": 1000000},
//	        "provider": {"status": "unhealthy", "message": "configuration repository unreachable", "duration_ms": 30000000}
//	    },
//	    "timestamp": "2026-08-29T10:30:00Z"
//	}
package health
