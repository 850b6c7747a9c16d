package middleware

import (
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	apperrors "tradebot/internal/errors"
)

// Recoverer turns a panic into a logged 500 JSON response.
func Recoverer(log logrus.FieldLogger) func(http.Handler) http.Handler {
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
				log.WithFields(logrus.Fields{
					"request_id": chimw.GetReqID(r.Context()),
					"path":       r.URL.Path,
					"panic":      rec,
					"stack":      string(debug.Stack()),
				}).Error("panic recovered")
				WriteError(w, apperrors.Internal("Internal server error", nil))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
