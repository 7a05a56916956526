// Package health runs named readiness checks and aggregates their results.
//
// Checks run in parallel under a shared timeout. The aggregated [Report] is
// plain data, so it can be rendered through any response formatter:
//
//	report := health.Run(ctx, health.Checks{
//	    "upstream": pingUpstream,
//	}, health.WithTimeout(2*time.Second))
//	if !report.Healthy() {
//	    // 503
//	}
//
// JSON shape of a report:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "upstream": {"status": "unhealthy", "error": "connection refused"}
//	  }
//	}
//
// A check that does not return before the timeout is reported with
// [ErrCheckTimeout].
package health
