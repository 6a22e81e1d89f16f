package httpapi

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StatusRecorder receives the final status code of every response.
type StatusRecorder interface {
	RecordHTTPStatus(statusCode int)
}

// NewRequestLogger logs one line per request and reports the status to rec (if non-nil).
// 5xx are logged at error level, 4xx at warn.
func NewRequestLogger(log *zap.Logger, rec StatusRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// The auth middleware runs further down the chain; it reports the subject back through this slot.
			slot := &subjectSlot{}
			next.ServeHTTP(ww, r.WithContext(withSubjectSlot(r.Context(), slot)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if rec != nil {
				rec.RecordHTTPStatus(status)
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.Int("bytes", ww.BytesWritten()),
			}
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				fields = append(fields, zap.String("request_id", rid))
			}
			if slot.subject != "" {
				fields = append(fields, zap.String("subject", slot.subject))
			}

			level := zapcore.InfoLevel
			switch {
			case status >= 500:
				level = zapcore.ErrorLevel
			case status >= 400:
				level = zapcore.WarnLevel
			}
			log.Log(level, "http_request", fields...)
		})
	}
}

// NewRecoverer turns a panic into a 500 error body. The panic value is echoed in the
// message only when exposeDetail is set (development mode).
func NewRecoverer(log *zap.Logger, exposeDetail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				msg := "Internal server error"
				if exposeDetail {
					msg = fmt.Sprint(rec)
				}
				writeError(w, r, http.StatusInternalServerError, "Something went wrong on the server!", msg)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
