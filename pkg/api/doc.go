// Package api exposes the grouping pipeline over HTTP.
//
// # Routes
//
//   - GET /healthz: liveness probe, always 200
//   - GET /version: build information as JSON
//   - POST /v1/layout: run every stage on a posted graph and return the groups
//
// A layout request carries the graph document in the same shape the CLI
// reads from disk, plus optional rules and strategy:
//
//	{
//	  "graph": {"nodes": [...], "edges": [...], "ignore": [...]},
//	  "rules": {"max_size_mb": 64, "output": [...]},
//	  "strategy": "reachability"
//	}
//
// # Errors
//
// Failures are returned as {"code": "...", "message": "..."} with a status
// derived from the error code: INVALID_* maps to 400, CONFIG_* to 422,
// CANCELED to 503 and everything else to 500.
//
// Requests share the server's [pipeline.Runner], so a cache configured on
// the runner serves repeat requests for the same graph.
package api
