package api

import "fmt"

// Route describes one entry of the routing table : matched
// by (method, top-level resource under /api), with MinArgs/MaxArgs
// bounding how many additional path segments may follow.
type Route struct {
	Method  string
	Resource string
	AuthRequired bool
	MinArgs int
	MaxArgs int // -1 means unbounded
}

var routes = []Route{
	{Method: "OPTIONS", Resource: "*", AuthRequired: false, MinArgs: 0, MaxArgs: -1},
	{Method: "POST", Resource: "handshake", AuthRequired: false, MinArgs: 0, MaxArgs: 0},
	{Method: "GET", Resource: "version", AuthRequired: true, MinArgs: 0, MaxArgs: 0},
	{Method: "GET", Resource: "buffers", AuthRequired: true, MinArgs: 0, MaxArgs: 3},
	{Method: "GET", Resource: "hotlist", AuthRequired: true, MinArgs: 0, MaxArgs: 3},
	{Method: "POST", Resource: "completion", AuthRequired: true, MinArgs: 0, MaxArgs: 0},
	{Method: "POST", Resource: "input", AuthRequired: true, MinArgs: 0, MaxArgs: 0},
	{Method: "POST", Resource: "ping", AuthRequired: true, MinArgs: 0, MaxArgs: 0},
	{Method: "POST", Resource: "sync", AuthRequired: true, MinArgs: 0, MaxArgs: 0},
}

// ErrRouteNotFound and ErrArgCountMismatch distinguish the two ways route
// matching fails: unknown route vs. mismatched argument count. Both map
// to a 404 response, but are kept as distinct sentinels for caller logging.
var (
	ErrRouteNotFound     = fmt.Errorf("api: route not found")
	ErrArgCountMismatch  = fmt.Errorf("api: argument count mismatch")
)

// MatchRoute finds the route for method+resource and validates argCount
// against its bounds.
func MatchRoute(method, resource string, argCount int) (Route, error) {
	for _, r := range routes {
		if r.Method != method {
			continue
		}
		if r.Resource != resource && r.Resource != "*" {
			continue
		}
		if argCount < r.MinArgs || (r.MaxArgs >= 0 && argCount > r.MaxArgs) {
			return Route{}, ErrArgCountMismatch
		}
		return r, nil
	}
	return Route{}, ErrRouteNotFound
}
