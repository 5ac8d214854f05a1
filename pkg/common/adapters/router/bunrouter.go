package router

import (
	"net/http"

	"github.com/uptrace/bunrouter"
)

// StandardBunRouterAdapter registers router-agnostic handlers on a bunrouter router
type StandardBunRouterAdapter struct {
	router *bunrouter.Router
}

func NewStandardBunRouterAdapter(opts ...bunrouter.Option) *StandardBunRouterAdapter {
	return &StandardBunRouterAdapter{router: bunrouter.New(opts...)}
}

// NewBunRouterRequest wraps a bunrouter request, exposing its route params as path params
func NewBunRouterRequest(req bunrouter.Request) *HTTPRequest {
	return NewHTTPRequest(req.Request, req.Params().Map())
}

// Handle registers handler for path and method. Path parameters use bunrouter syntax (":id").
func (b *StandardBunRouterAdapter) Handle(method, path string, handler HandlerFunc) {
	b.router.Handle(method, path, func(w http.ResponseWriter, req bunrouter.Request) error {
		handler(NewHTTPResponseWriter(w), NewBunRouterRequest(req))
		return nil
	})
}

// GetBunRouter returns the underlying router for server setup
func (b *StandardBunRouterAdapter) GetBunRouter() *bunrouter.Router {
	return b.router
}
