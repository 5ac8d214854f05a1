package jsonserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/logger"
	"github.com/bitechdev/RASpec/pkg/query"
)

const (
	HeaderTotalCount    = "X-Total-Count"
	HeaderExposeHeaders = "Access-Control-Expose-Headers"
)

// Endpoint is a resource with its types erased, as held by the Server
type Endpoint interface {
	Resource() string
	Model() interface{}
	Metadata() common.TableMetadata

	// HandleCollection serves /{resource}
	HandleCollection(w common.ResponseWriter, r common.Request)
	// HandleItem serves /{resource}/{id}
	HandleItem(w common.ResponseWriter, r common.Request, id string)
	// HandleReference serves /{resource}/of/{targetField}/{targetId}
	HandleReference(w common.ResponseWriter, r common.Request, targetField, targetID string)
}

// Handler exposes a Service over the json-server REST dialect
type Handler[T, C any, ID comparable] struct {
	resource string
	service  Service[T, C, ID]
	parseID  IDParser[ID]
}

func NewHandler[T, C any, ID comparable](resource string, service Service[T, C, ID], parseID IDParser[ID]) *Handler[T, C, ID] {
	return &Handler[T, C, ID]{
		resource: resource,
		service:  service,
		parseID:  parseID,
	}
}

func (h *Handler[T, C, ID]) Resource() string {
	return h.resource
}

func (h *Handler[T, C, ID]) Model() interface{} {
	return h.service.Model()
}

func (h *Handler[T, C, ID]) Metadata() common.TableMetadata {
	return h.service.Schema().Metadata(h.resource)
}

// handlePanic is a helper function to handle panics with stack traces
func (h *Handler[T, C, ID]) handlePanic(w common.ResponseWriter, method string, err interface{}) {
	stack := debug.Stack()
	logger.Error("Panic in %s %s: %v\nStack trace:\n%s", h.resource, method, err, string(stack))
	sendError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Internal server error in %s", method), nil)
}

func (h *Handler[T, C, ID]) HandleCollection(w common.ResponseWriter, r common.Request) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleCollection", err)
		}
	}()

	ids := r.QueryValues()["id"]

	switch r.Method() {
	case http.MethodGet:
		if len(ids) > 0 {
			h.GetMany(w, r, ids)
			return
		}
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	case http.MethodPut:
		h.UpdateMany(w, r, ids)
	case http.MethodDelete:
		h.DeleteMany(w, r, ids)
	default:
		sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", fmt.Sprintf("Method %s not allowed on %s", r.Method(), h.resource), nil)
	}
}

func (h *Handler[T, C, ID]) HandleItem(w common.ResponseWriter, r common.Request, rawID string) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleItem", err)
		}
	}()

	id, err := h.parseID(rawID)
	if err != nil {
		h.writeError(w, "parse id", err)
		return
	}

	switch r.Method() {
	case http.MethodGet:
		h.GetOne(w, r, id)
	case http.MethodPut:
		h.Update(w, r, id)
	case http.MethodDelete:
		h.Delete(w, r, id)
	default:
		sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", fmt.Sprintf("Method %s not allowed on %s/{id}", r.Method(), h.resource), nil)
	}
}

func (h *Handler[T, C, ID]) HandleReference(w common.ResponseWriter, r common.Request, targetField, targetID string) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleReference", err)
		}
	}()

	params := query.ParamsFromValues(r.QueryValues())
	logger.Info("Received getManyReference request for %s with target %s=%s and params %v", h.resource, targetField, targetID, params)

	page, err := query.ResolvePage(params)
	if err != nil {
		h.writeError(w, "getManyReference", err)
		return
	}

	ref := query.Reference{TargetField: targetField, TargetID: targetID}
	result, err := h.service.FindWithTargetAndFilters(r.Context(), ref, query.NormalizeFilters(params), page)
	if err != nil {
		h.writeError(w, "getManyReference", err)
		return
	}

	sendPage(w, result)
}

// List serves getList
func (h *Handler[T, C, ID]) List(w common.ResponseWriter, r common.Request) {
	params := query.ParamsFromValues(r.QueryValues())
	logger.Info("Received getList request for %s with params %v", h.resource, params)

	page, err := query.ResolvePage(params)
	if err != nil {
		h.writeError(w, "getList", err)
		return
	}

	result, err := h.service.FindWithFilters(r.Context(), query.NormalizeFilters(params), page)
	if err != nil {
		h.writeError(w, "getList", err)
		return
	}

	sendPage(w, result)
}

// GetMany serves GET /{resource}?id=..., without pagination headers
func (h *Handler[T, C, ID]) GetMany(w common.ResponseWriter, r common.Request, rawIDs []string) {
	logger.Info("Received getMany request for %s with ids %v", h.resource, rawIDs)

	ids, err := parseIDs(h.parseID, rawIDs)
	if err != nil {
		h.writeError(w, "getMany", err)
		return
	}

	items, err := h.service.FindAllByID(r.Context(), ids)
	if err != nil {
		h.writeError(w, "getMany", err)
		return
	}

	sendJSON(w, http.StatusOK, items)
}

func (h *Handler[T, C, ID]) GetOne(w common.ResponseWriter, r common.Request, id ID) {
	logger.Info("Received getOne request for %s %v", h.resource, id)

	item, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "getOne", err)
		return
	}

	sendJSON(w, http.StatusOK, item)
}

func (h *Handler[T, C, ID]) Create(w common.ResponseWriter, r common.Request) {
	logger.Info("Received create request for %s", h.resource)

	var input C
	if err := decodeBody(r, &input); err != nil {
		logger.Error("Failed to decode %s create body: %v", h.resource, err)
		sendError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
		return
	}

	item, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, "create", err)
		return
	}

	sendJSON(w, http.StatusCreated, item)
}

func (h *Handler[T, C, ID]) Update(w common.ResponseWriter, r common.Request, id ID) {
	logger.Info("Received update request for %s %v", h.resource, id)

	fields, err := decodeFields(r)
	if err != nil {
		logger.Error("Failed to decode %s update body: %v", h.resource, err)
		sendError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
		return
	}

	item, err := h.service.Update(r.Context(), id, fields)
	if err != nil {
		h.writeError(w, "update", err)
		return
	}

	sendJSON(w, http.StatusOK, item)
}

func (h *Handler[T, C, ID]) UpdateMany(w common.ResponseWriter, r common.Request, rawIDs []string) {
	logger.Info("Received updateMany request for %s with ids %v", h.resource, rawIDs)

	ids, err := parseIDs(h.parseID, rawIDs)
	if err != nil {
		h.writeError(w, "updateMany", err)
		return
	}

	fields, err := decodeFields(r)
	if err != nil {
		logger.Error("Failed to decode %s updateMany body: %v", h.resource, err)
		sendError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
		return
	}

	updated, err := h.service.UpdateMany(r.Context(), ids, fields)
	if err != nil {
		h.writeError(w, "updateMany", err)
		return
	}

	sendJSON(w, http.StatusOK, updated)
}

func (h *Handler[T, C, ID]) Delete(w common.ResponseWriter, r common.Request, id ID) {
	logger.Info("Received delete request for %s %v", h.resource, id)

	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.writeError(w, "delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler[T, C, ID]) DeleteMany(w common.ResponseWriter, r common.Request, rawIDs []string) {
	logger.Info("Received deleteMany request for %s with ids %v", h.resource, rawIDs)

	ids, err := parseIDs(h.parseID, rawIDs)
	if err != nil {
		h.writeError(w, "deleteMany", err)
		return
	}

	deleted, err := h.service.DeleteMany(r.Context(), ids)
	if err != nil {
		h.writeError(w, "deleteMany", err)
		return
	}

	sendJSON(w, http.StatusOK, deleted)
}

// writeError maps typed errors to client errors. Anything else is logged and
// reported as an opaque server error.
func (h *Handler[T, C, ID]) writeError(w common.ResponseWriter, operation string, err error) {
	status, code := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Error in %s %s: %v", h.resource, operation, err)
		sendError(w, status, code, fmt.Sprintf("Error in %s", operation), nil)
		return
	}
	logger.Warn("Rejected %s %s: %v", h.resource, operation, err)
	sendError(w, status, code, err.Error(), nil)
}

func sendPage[T any](w common.ResponseWriter, page query.Page[T]) {
	w.SetHeader(HeaderTotalCount, strconv.FormatInt(page.Total, 10))
	w.SetHeader(HeaderExposeHeaders, HeaderTotalCount)
	sendJSON(w, http.StatusOK, page.Items)
}

func sendJSON(w common.ResponseWriter, status int, data interface{}) {
	w.SetHeader("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := w.WriteJSON(data); err != nil {
		logger.Error("Failed to write response: %v", err)
	}
}

func sendError(w common.ResponseWriter, status int, code, message string, details interface{}) {
	apiErr := common.APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
	if err, ok := details.(error); ok {
		apiErr.Details = nil
		apiErr.Detail = err.Error()
	}
	sendJSON(w, status, apiErr)
}

func decodeBody(r common.Request, dest interface{}) error {
	body, err := r.Body()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("empty body")
	}
	return json.Unmarshal(body, dest)
}

// decodeFields keeps numbers as json.Number so large ids survive the patch
func decodeFields(r common.Request) (map[string]interface{}, error) {
	body, err := r.Body()
	if err != nil {
		return nil, err
	}
	fields := make(map[string]interface{})
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
