// Package handlers provides the JSON HTTP handlers of the trading proxy.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	apperrors "tradebot/internal/errors"
	"tradebot/internal/middleware"
)

// maxBodyBytes bounds request bodies; every body here is a small JSON object.
const maxBodyBytes = 64 << 10

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.Validation("Invalid JSON body")
	}
	return nil
}

// respond writes v as JSON with status 200.
func respond(w http.ResponseWriter, v any) {
	middleware.WriteJSON(w, http.StatusOK, v)
}

// fail logs err and writes it as {"error": ...}. Client errors are logged
// at debug level; everything else is a warning.
func fail(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := apperrors.HTTPStatus(err)
	entry := log.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"status": status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Warn("request failed")
	} else {
		entry.Debug("request rejected")
	}
	middleware.WriteError(w, err)
}
