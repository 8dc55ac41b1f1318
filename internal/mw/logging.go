package mw

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/bramblewood/orgaccess/internal/httpx"
	"github.com/bramblewood/orgaccess/internal/trace"
)

type LogOpts struct {
	SkipPaths []string
}

// Logger emits a one-line summary per request. Denials and errors get an
// extra record with the caller identity, since 403s are the interesting
// outcome in this service.
func Logger(opts LogOpts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || slices.Contains(opts.SkipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := httpx.NewRecorder(w)
			next.ServeHTTP(rec, r)
			dur := time.Since(start)

			slog.Info("req",
				"trace", trace.From(r.Context()),
				"m", r.Method,
				"path", r.URL.Path,
				"status", rec.Status,
				"ms", dur.Milliseconds(),
				"bytes", rec.Bytes,
			)

			if rec.Status >= 400 {
				slog.Warn("req_detail",
					"trace", trace.From(r.Context()),
					"m", r.Method,
					"path", r.URL.Path,
					"status", rec.Status,
					"user", r.URL.Query().Get("user_id"),
				)
			}
		})
	}
}
