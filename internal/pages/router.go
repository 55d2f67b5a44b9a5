package pages

import (
	"strings"

	"github.com/gin-gonic/gin"

	"secureforms/internal/session"
)

// HandlerFunc renders a page or issues a redirect for a matched route.
type HandlerFunc func(c *gin.Context, state session.State)

type route struct {
	path         string
	handler      HandlerFunc
	requiresAuth bool
	fallback     HandlerFunc
}

// Router matches request paths against an ordered registration list.
// Matching is exact path equality and first-match-wins: duplicates are
// permitted but only the earliest registration ever fires. Dispatch itself
// never fails; an unmatched path is a normal outcome the caller handles.
type Router struct {
	routes []route
}

func NewRouter() *Router {
	return &Router{}
}

type RouteOption func(*route)

// WithAuth marks a route as requiring an authenticated session. For anonymous
// sessions the fallback runs instead of the handler, typically a redirect to
// the login page.
func WithAuth(fallback HandlerFunc) RouteOption {
	return func(rt *route) {
		rt.requiresAuth = true
		rt.fallback = fallback
	}
}

// Register appends a route. Paths are stored as given; no format validation.
func (r *Router) Register(path string, h HandlerFunc, opts ...RouteOption) {
	rt := route{path: path, handler: h}
	for _, opt := range opts {
		opt(&rt)
	}
	r.routes = append(r.routes, rt)
}

// Dispatch scans the registration list in order and invokes the first match.
// Reports whether any route fired; false means the caller serves not-found.
func (r *Router) Dispatch(c *gin.Context, requestPath string, state session.State) bool {
	for _, rt := range r.routes {
		if rt.path != requestPath {
			continue
		}
		if rt.requiresAuth && !state.Authenticated() {
			rt.fallback(c, state)
			return true
		}
		rt.handler(c, state)
		return true
	}
	return false
}

// Normalize strips surrounding slashes so "/accounts/login/" and
// "accounts/login" address the same route. The site root maps to "".
func Normalize(requestPath string) string {
	return strings.Trim(requestPath, "/")
}
