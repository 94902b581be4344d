package httpserver

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"whatsapp_reviews/internal/adapters/observability"
)

const timeoutBody = `{"success":false,"reviews":[],"error":"request timed out"}`

// Timeout answers 503 with a JSON failure body once d elapses. Only for
// read routes: the webhook must always acknowledge with 200.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, d, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// replaced by the handler's own headers when it finishes in time
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r)
		})
	}
}

// ---- status-recording ResponseWriter ----

type srw struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *srw) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *srw) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *srw) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// ---- per-request log annotations ----

type noteKey struct{}

// requestNote carries fields a handler learns while serving, such as the
// webhook sender, into the request log line.
type requestNote struct {
	sender     string
	messageSID string
}

func noteFrom(ctx context.Context) *requestNote {
	n, _ := ctx.Value(noteKey{}).(*requestNote)
	return n
}

// annotate records the webhook identity for the request log; a no-op outside
// Instrument.
func annotate(ctx context.Context, sender, messageSID string) {
	if n := noteFrom(ctx); n != nil {
		n.sender, n.messageSID = sender, messageSID
	}
}

// ---- metrics + structured logging ----

// Instrument records the request metrics and emits one http_request log line,
// sharing a single status recorder.
func Instrument(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &srw{ResponseWriter: w}
			note := &requestNote{}
			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), noteKey{}, note)))

			dur := time.Since(start)
			route := routePattern(r)
			observability.ObserveHTTP(route, r.Method, sw.Status(), dur)

			ev := l.Info().
				Str("route", route).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Dur("duration", dur).
				Str("remote", remoteIP(r)).
				Str("ua", r.UserAgent())
			if id := chimw.GetReqID(r.Context()); id != "" {
				ev = ev.Str("request_id", id)
			}
			if note.messageSID != "" {
				ev = ev.Str("message_sid", note.messageSID)
			}
			if note.sender != "" {
				ev = ev.Str("sender", note.sender)
			}
			ev.Msg("http_request")
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Picks first X-Forwarded-For IP, else X-Real-IP, else RemoteAddr host.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
