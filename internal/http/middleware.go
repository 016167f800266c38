package http

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/sopatech/rolegate/internal/assignments"
)

// RequestID makes sure every request carries an X-Request-ID, generating one when
// the caller sent none, and echoes it on the response. Handlers use it as the
// correlation id for authorization decisions.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(assignments.RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		r.Header.Set(assignments.RequestIDHeader, id)
		w.Header().Set(assignments.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// RealIP rewrites r.RemoteAddr to the client address reported by the load
// balancer: X-Real-IP, else the leftmost X-Forwarded-For entry. Values that do not
// parse as an IP are ignored.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r.Header); ip != "" {
			r.RemoteAddr = net.JoinHostPort(ip, "0")
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(h http.Header) string {
	candidates := []string{h.Get("X-Real-IP")}
	if fwd, _, _ := strings.Cut(h.Get("X-Forwarded-For"), ","); fwd != "" {
		candidates = append(candidates, fwd)
	}
	for _, c := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(c)); ip != nil {
			return ip.String()
		}
	}
	return ""
}

// statusWriter remembers the status code and body size a handler produced.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func traceAttrs(r *http.Request) []any {
	sc := trace.SpanFromContext(r.Context()).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []any{slog.String("trace_id", sc.TraceID().String()), slog.String("span_id", sc.SpanID().String())}
}

// RequestLogger writes one access log line per request. Server errors log at
// error level so they surface next to the handler's own error line.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, r)

			level := slog.LevelInfo
			if sw.code() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := append([]any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.code()),
				slog.Int("bytes", sw.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("request_id", r.Header.Get(assignments.RequestIDHeader)),
			}, traceAttrs(r)...)
			logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}

// Recoverer turns a handler panic into a 500 and logs it with the stack.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				attrs := append([]any{
					slog.Any("panic", v),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", r.Header.Get(assignments.RequestIDHeader)),
					slog.String("stack", string(debug.Stack())),
				}, traceAttrs(r)...)
				logger.ErrorContext(r.Context(), "panic recovered", attrs...)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
