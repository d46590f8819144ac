package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gearguard/pkg/errors"
)

// LoggingMiddleware provides request logging with security context
type LoggingMiddleware struct {
	logger *zap.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingMiddleware{
		logger: logger,
	}
}

// Recover turns a panic into a 500 and logs it with the stack.
func (lm *LoggingMiddleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := newResponseWriter(w)
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				lm.logger.Error("HTTP handler panic",
					zap.String("error", fmt.Sprint(recovered)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", RequestID(r.Context())),
					zap.ByteString("stack", debug.Stack()))

				if !wrapped.wroteHeader {
					writeError(wrapped, errors.NewAppError(errors.ErrorCodeInternal, "Internal server error"))
				}
			}
		}()

		next.ServeHTTP(wrapped, r)
	})
}

// RequestID assigns a correlation id unless the caller supplied one, and echoes it back.
func (lm *LoggingMiddleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

// LogRequests logs incoming requests with security information
func (lm *LoggingMiddleware) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		// TrustedProxy runs before this in the chain; without it use the socket address.
		clientIP := ClientIP(r.Context())
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", clientIP),
			zap.String("request_id", RequestID(r.Context())),
			zap.String("user_agent", r.UserAgent()),
		}

		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			lm.logger.Error("HTTP request", fields...)
		case wrapped.statusCode == http.StatusTooManyRequests:
			lm.logger.Warn("SECURITY: rate limit exceeded", fields...)
		case wrapped.statusCode == http.StatusRequestTimeout:
			lm.logger.Warn("SECURITY: request timeout", fields...)
		default:
			lm.logger.Info("HTTP request", fields...)
		}
	})
}
