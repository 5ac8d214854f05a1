package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bitechdev/RASpec/pkg/logger"
)

// Middleware wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one listed runs outermost
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// CORSConfig controls the headers written by CORS
type CORSConfig struct {
	// AllowOrigin is "*" or a comma separated list of origins
	AllowOrigin   string
	ExposeHeaders []string
}

// CORS adds cross-origin headers and answers preflight requests with 204.
// Headers listed in ExposeHeaders are readable by browser clients, which
// react-admin needs for X-Total-Count.
func CORS(cfg CORSConfig) Middleware {
	origins := parseOrigins(cfg.AllowOrigin)
	expose := strings.Join(cfg.ExposeHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			if origin, vary := resolveOrigin(origins, r.Header.Get("Origin")); origin != "" {
				header.Set("Access-Control-Allow-Origin", origin)
				if vary {
					header.Add("Vary", "Origin")
				}
			}
			header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			if expose != "" {
				header.Set("Access-Control-Expose-Headers", expose)
			}

			if r.Method == http.MethodOptions {
				header.Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func resolveOrigin(origins []string, requestOrigin string) (string, bool) {
	if len(origins) == 0 {
		return "*", false
	}
	for _, o := range origins {
		if o == "*" {
			return "*", false
		}
	}
	for _, o := range origins {
		if o == requestOrigin {
			return requestOrigin, true
		}
	}
	return "", true
}

func parseOrigins(allowOrigin string) []string {
	parts := strings.Split(allowOrigin, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of every request
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("%s %s -> %d (%s)", r.Method, r.URL.RequestURI(), rec.status, time.Since(start))
	})
}

// Recover turns a panic escaping the handlers into a bare 500
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic serving %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
