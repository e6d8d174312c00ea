package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/getall/framework/capability"
)

// Router wraps chi.Router and serves the inspection endpoints.
type Router struct {
	mux chi.Router
}

// New creates a Router with sane defaults (RealIP, Logger, Recoverer) and
// mounts:
//
//	GET /capabilities → discovery cache contents
//	GET /modules      → module set in scan order
//	GET /metrics      → Prometheus exposition of gatherer
func New(scanner *capability.Scanner, gatherer prometheus.Gatherer) *Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	insp := &inspector{scanner: scanner}
	r.Get("/capabilities", insp.capabilities)
	r.Get("/modules", insp.modules)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &Router{mux: r}
}

// Get and Post register application routes next to the inspection ones.
func (r *Router) Get(pattern string, h http.HandlerFunc)  { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc) { r.mux.Post(pattern, h) }

// Param extracts a URL param — equivalent to $request->route('id')
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ServeHTTP implements http.Handler so Router can be passed to http.Server.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
