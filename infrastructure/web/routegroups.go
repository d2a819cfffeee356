package web

import (
	"net/http"
	"strings"
)

// RouteGroup registers routes under a shared prefix and middleware stack.
type RouteGroup struct {
	webHandler *WebHandler
	prefix     string
	middleware []Middleware
}

func (wh *WebHandler) Group(prefix string, middleware ...Middleware) *RouteGroup {
	return &RouteGroup{
		webHandler: wh,
		prefix:     strings.TrimSuffix(prefix, "/"),
		middleware: middleware,
	}
}

func (g *RouteGroup) Handle(method, path string, handler HandlerFunc, middleware ...Middleware) {
	g.webHandler.Handle(method, g.prefix+path, handler, g.chain(middleware)...)
}

func (g *RouteGroup) Group(prefix string, middleware ...Middleware) *RouteGroup {
	return &RouteGroup{
		webHandler: g.webHandler,
		prefix:     g.prefix + strings.TrimSuffix(prefix, "/"),
		middleware: g.chain(middleware),
	}
}

func (g *RouteGroup) chain(extra []Middleware) []Middleware {
	out := make([]Middleware, 0, len(g.middleware)+len(extra))
	out = append(out, g.middleware...)
	return append(out, extra...)
}

func (g *RouteGroup) GET(path string, handler HandlerFunc, middleware ...Middleware) {
	g.Handle(http.MethodGet, path, handler, middleware...)
}

func (g *RouteGroup) POST(path string, handler HandlerFunc, middleware ...Middleware) {
	g.Handle(http.MethodPost, path, handler, middleware...)
}

func (g *RouteGroup) PUT(path string, handler HandlerFunc, middleware ...Middleware) {
	g.Handle(http.MethodPut, path, handler, middleware...)
}

func (g *RouteGroup) DELETE(path string, handler HandlerFunc, middleware ...Middleware) {
	g.Handle(http.MethodDelete, path, handler, middleware...)
}
