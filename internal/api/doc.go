// Package api serves the dashboard datasource endpoints.
//
// The routes follow the SimpleJSON contract used by dashboard tools: "/"
// identifies the datasource, /search lists target names, /query returns
// timeseries and table results, and /annotations, /tag-keys and /tag-values
// answer with empty lists. Every route accepts GET and POST. GET /health
// reports store reachability for probes.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Errors are returned as a structured JSON body: malformed requests get
// 400, store failures 500.
package api
