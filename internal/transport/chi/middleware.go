package chi

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/estaterag/internal/logger"
)

// recoverJSON turns a handler panic into a 500 JSON error. It runs inside
// wideEventMiddleware so the panic is logged with the request id and the
// canonical line still reports the 500.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			logpkg.FromContext(r.Context()).Error("panic recovered",
				zap.Any("panic", rvr),
				zap.Stack("stacktrace"),
			)
			logpkg.AddFields(r.Context(), zap.Bool("panic", true))
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}

// wideEventMiddleware emits one http_request line per request, including the
// fields handlers add through logger.AddFields, and echoes X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithEvent(logpkg.ContextWithLogger(r.Context(), reqLogger))
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := append([]zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			}, logpkg.EventFields(ctx)...)
			reqLogger.Info("http_request", fields...)
		})
	}
}
