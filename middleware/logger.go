package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Flush keeps the recorder usable for streaming responses.
func (w *statusRecorder) Flush() {
	if fl, ok := w.ResponseWriter.(http.Flusher); ok {
		fl.Flush()
	}
}

// RequestIDMiddleware tags every request with a unique id for log
// correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(r *http.Request) string {
	if v := r.Context().Value(RequestIDKey); v != nil {
		return v.(string)
	}
	return "unknown"
}

// LoggerMiddleware writes one structured line per completed request.
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w}

			// AuthMiddleware runs further down the chain and attaches
			// claims to a downstream context copy this handler never
			// sees. The shared holder is how they reach the log line.
			holder := &claimsHolder{}
			ctx := context.WithValue(r.Context(), claimsHolderKey, holder)

			next.ServeHTTP(recorder, r.WithContext(ctx))

			email := "anonymous"
			if holder.claims != nil {
				email = holder.claims.Email
			}

			logger.Info().
				Str("request_id", getRequestID(r)).
				Str("email", email).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recorder.Status()).
				Msg("request completed")
		})
	}
}
