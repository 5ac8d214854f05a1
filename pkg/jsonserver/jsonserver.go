package jsonserver

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/logger"
	"github.com/bitechdev/RASpec/pkg/modelregistry"
	"github.com/bitechdev/RASpec/pkg/patch"
	"github.com/bitechdev/RASpec/pkg/repository"
)

// Server routes requests to the Endpoint registered for the {resource} path segment
type Server struct {
	registry *modelregistry.Registry[Endpoint]
}

func NewServer() *Server {
	return &Server{registry: modelregistry.New[Endpoint]()}
}

// Register adds endpoints under their resource names
func (s *Server) Register(endpoints ...Endpoint) error {
	for _, e := range endpoints {
		if _, err := modelregistry.ValidateModel(e.Model()); err != nil {
			return fmt.Errorf("resource %s: %w", e.Resource(), err)
		}
		if err := s.registry.Register(e.Resource(), e); err != nil {
			return err
		}
		logger.Info("Registered resource %s", e.Resource())
	}
	return nil
}

// Endpoints returns the registered endpoints in registration order
func (s *Server) Endpoints() []Endpoint {
	endpoints := make([]Endpoint, 0, s.registry.Len())
	s.registry.Each(func(_ string, e Endpoint) {
		endpoints = append(endpoints, e)
	})
	return endpoints
}

// Models returns one zero entity per resource, for schema migration
func (s *Server) Models() []interface{} {
	endpoints := s.Endpoints()
	models := make([]interface{}, 0, len(endpoints))
	for _, e := range endpoints {
		models = append(models, e.Model())
	}
	return models
}

func (s *Server) endpoint(w common.ResponseWriter, r common.Request) (Endpoint, bool) {
	resource := r.PathParam("resource")
	e, err := s.registry.Get(resource)
	if err != nil {
		logger.Warn("Request for unknown resource %q: %s %s", resource, r.Method(), r.URL())
		sendError(w, http.StatusNotFound, "unknown_resource", fmt.Sprintf("Unknown resource %s", resource),
			map[string]interface{}{"resources": s.registry.Names()})
		return nil, false
	}
	return e, true
}

func (s *Server) HandleCollection(w common.ResponseWriter, r common.Request) {
	if e, ok := s.endpoint(w, r); ok {
		e.HandleCollection(w, r)
	}
}

func (s *Server) HandleItem(w common.ResponseWriter, r common.Request) {
	if e, ok := s.endpoint(w, r); ok {
		e.HandleItem(w, r, r.PathParam("id"))
	}
}

func (s *Server) HandleReference(w common.ResponseWriter, r common.Request) {
	if e, ok := s.endpoint(w, r); ok {
		e.HandleReference(w, r, r.PathParam("targetField"), r.PathParam("targetId"))
	}
}

// HandleMeta returns the column metadata of a resource
func (s *Server) HandleMeta(w common.ResponseWriter, r common.Request) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("Panic in HandleMeta: %v\nStack trace:\n%s", err, string(debug.Stack()))
			sendError(w, http.StatusInternalServerError, "internal_error", "Internal server error in HandleMeta", nil)
		}
	}()

	if e, ok := s.endpoint(w, r); ok {
		logger.Info("Getting metadata for %s", e.Resource())
		sendJSON(w, http.StatusOK, e.Metadata())
	}
}

// Resource wires a repository, service and handler for entity E on db
type Resource[E, T, C any, ID comparable] struct {
	Name    string
	Fields  patch.Fields[E]
	Mapper  Mapper[E, T, C]
	ParseID IDParser[ID]
}

// NewEndpoint builds the handler described by res on db
func NewEndpoint[E, T, C any, ID comparable](db common.Database, res Resource[E, T, C, ID]) (*Handler[T, C, ID], error) {
	repo, err := repository.New[E, ID](db)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", res.Name, err)
	}

	service, err := NewCRUDService(res.Name, repo, res.Fields, res.Mapper)
	if err != nil {
		return nil, err
	}

	return NewHandler[T, C, ID](res.Name, service, res.ParseID), nil
}
