package jsonserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bitechdev/RASpec/pkg/common/adapters/router"
)

// SetupMuxRoutes sets up routes for every registered resource under prefix
func SetupMuxRoutes(muxRouter *mux.Router, server *Server, prefix string) {
	if p := normalizePrefix(prefix); p != "" {
		muxRouter = muxRouter.PathPrefix(p).Subrouter()
	}
	r := router.NewMuxAdapter(muxRouter)

	r.Handle("/{resource}", server.HandleCollection, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
	// Registered before /{id} so "_meta" is not taken for an id
	r.Handle("/{resource}/_meta", server.HandleMeta, http.MethodGet)
	r.Handle("/{resource}/of/{targetField}/{targetId}", server.HandleReference, http.MethodGet)
	r.Handle("/{resource}/{id}", server.HandleItem, http.MethodGet, http.MethodPut, http.MethodDelete)
}

// SetupBunRouterRoutes sets up bunrouter routes for every registered resource under prefix
func SetupBunRouterRoutes(bunRouter *router.StandardBunRouterAdapter, server *Server, prefix string) {
	p := normalizePrefix(prefix)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		bunRouter.Handle(method, p+"/:resource", server.HandleCollection)
	}

	bunRouter.Handle(http.MethodGet, p+"/:resource/_meta", server.HandleMeta)
	bunRouter.Handle(http.MethodGet, p+"/:resource/of/:targetField/:targetId", server.HandleReference)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		bunRouter.Handle(method, p+"/:resource/:id", server.HandleItem)
	}
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
