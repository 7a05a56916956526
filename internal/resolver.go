package internal

// Resolve returns the first route, in registration order, whose method equals
// method exactly and whose pattern matches path, together with the bound
// path parameters. There is no precedence beyond registration order.
func Resolve(routes []RouteEntry, method, path string) (RouteEntry, map[string]string, bool) {
	for _, route := range routes {
		if route.Method != method {
			continue
		}
		if params, ok := route.Pattern.Match(path); ok {
			return route, params, true
		}
	}
	return RouteEntry{}, nil, false
}
