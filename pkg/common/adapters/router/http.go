package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bitechdev/RASpec/pkg/common"
)

// HTTPRequest adapts standard http.Request to our Request interface
type HTTPRequest struct {
	req  *http.Request
	vars map[string]string
	body []byte
}

// NewHTTPRequest wraps r with the path variables extracted by the router
func NewHTTPRequest(r *http.Request, vars map[string]string) *HTTPRequest {
	if vars == nil {
		vars = make(map[string]string)
	}
	return &HTTPRequest{
		req:  r,
		vars: vars,
	}
}

func (h *HTTPRequest) Context() context.Context {
	return h.req.Context()
}

func (h *HTTPRequest) Method() string {
	return h.req.Method
}

func (h *HTTPRequest) URL() string {
	return h.req.URL.String()
}

func (h *HTTPRequest) Body() ([]byte, error) {
	if h.body != nil {
		return h.body, nil
	}
	if h.req.Body == nil {
		return nil, nil
	}
	defer h.req.Body.Close()
	body, err := io.ReadAll(h.req.Body)
	if err != nil {
		return nil, err
	}
	h.body = body
	return body, nil
}

func (h *HTTPRequest) PathParam(key string) string {
	return h.vars[key]
}

func (h *HTTPRequest) QueryValues() map[string][]string {
	return h.req.URL.Query()
}

// HTTPResponseWriter adapts our ResponseWriter interface to standard http.ResponseWriter
type HTTPResponseWriter struct {
	resp   http.ResponseWriter
	status int
}

func NewHTTPResponseWriter(w http.ResponseWriter) *HTTPResponseWriter {
	return &HTTPResponseWriter{resp: w}
}

func (h *HTTPResponseWriter) SetHeader(key, value string) {
	h.resp.Header().Set(key, value)
}

func (h *HTTPResponseWriter) WriteHeader(statusCode int) {
	h.status = statusCode
	h.resp.WriteHeader(statusCode)
}

func (h *HTTPResponseWriter) Write(data []byte) (int, error) {
	return h.resp.Write(data)
}

func (h *HTTPResponseWriter) WriteJSON(data interface{}) error {
	h.SetHeader("Content-Type", "application/json")
	if h.status == 0 {
		h.WriteHeader(http.StatusOK)
	}
	return json.NewEncoder(h.resp).Encode(data)
}

var (
	_ common.Request        = (*HTTPRequest)(nil)
	_ common.ResponseWriter = (*HTTPResponseWriter)(nil)
)
