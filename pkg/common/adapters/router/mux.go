package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bitechdev/RASpec/pkg/common"
)

// HandlerFunc is a router-agnostic handler
type HandlerFunc func(w common.ResponseWriter, r common.Request)

// MuxAdapter registers router-agnostic handlers on a Gorilla Mux router
type MuxAdapter struct {
	router *mux.Router
}

// NewMuxAdapter creates a new Mux adapter
func NewMuxAdapter(router *mux.Router) *MuxAdapter {
	return &MuxAdapter{router: router}
}

// Handle registers handler for pattern and the given methods
func (m *MuxAdapter) Handle(pattern string, handler HandlerFunc, methods ...string) *mux.Route {
	route := m.router.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		handler(NewHTTPResponseWriter(w), NewHTTPRequest(r, mux.Vars(r)))
	})
	if len(methods) > 0 {
		route.Methods(methods...)
	}
	return route
}
