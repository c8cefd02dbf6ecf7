package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Caller identity arrives from the gateway as a header; auth itself is an
// external collaborator at this internal boundary.
const userIDHeader = "X-User-ID"

func userID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}

// RequestLogger logs method, path, status, and latency for each request.
func RequestLogger(next http.Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
