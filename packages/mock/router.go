package mock

import (
	"regexp"
	"strings"
)

// Route serves a canned response for a method and path pattern. Path
// patterns use the same {name} placeholder form as request URL templates.
type Route struct {
	Name        string
	Method      string
	PathPattern string
	PathRegex   *regexp.Regexp
	Status      int
	Headers     map[string]string
	Body        string
}

// Router matches incoming requests to routes
type Router struct {
	routes []*Route
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// AddRoute adds a route to the router
func (r *Router) AddRoute(route *Route) {
	if route.PathRegex == nil {
		route.PathRegex = compilePathPattern(route.PathPattern)
	}
	r.routes = append(r.routes, route)
}

// Match finds a route matching the given method and path. The returned map
// holds the values captured by {name} placeholders in the pattern.
func (r *Router) Match(method, path string) (*Route, map[string]string) {
	path = normalizePath(path)

	for _, route := range r.routes {
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		if params := matchPath(route, path); params != nil {
			return route, params
		}
	}

	return nil, nil
}

// Routes returns all registered routes
func (r *Router) Routes() []*Route {
	return r.routes
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

var pathParamPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// compilePathPattern converts {name} placeholders into named capture groups.
// Literal segments are quoted, so a "." in the pattern matches only a dot.
func compilePathPattern(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")

	last := 0
	for _, loc := range pathParamPattern.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		b.WriteString("(?P<")
		b.WriteString(pattern[loc[2]:loc[3]])
		b.WriteString(">[^/]+)")
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")

	regex, err := regexp.Compile(b.String())
	if err != nil {
		// Fallback to literal match
		return regexp.MustCompile("^" + regexp.QuoteMeta(pattern) + "$")
	}
	return regex
}

func matchPath(route *Route, path string) map[string]string {
	if route.PathRegex != nil {
		matches := route.PathRegex.FindStringSubmatch(path)
		if matches != nil {
			params := make(map[string]string)
			names := route.PathRegex.SubexpNames()
			for i, name := range names {
				if i > 0 && name != "" && i < len(matches) {
					params[name] = matches[i]
				}
			}
			return params
		}
	}

	if route.PathPattern == path {
		return make(map[string]string)
	}

	return nil
}
