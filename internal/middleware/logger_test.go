package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRequestLogger_LogsStatusAndPath(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	req := httptest.NewRequest("POST", "/api/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry written")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("level = %v, want warn", entry.Level)
	}
	if entry.Data["path"] != "/api/orders" {
		t.Errorf("path = %v, want /api/orders", entry.Data["path"])
	}
	if entry.Data["status"] != http.StatusBadRequest {
		t.Errorf("status = %v, want %d", entry.Data["status"], http.StatusBadRequest)
	}
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/health", nil))

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.InfoLevel {
		t.Fatalf("entry = %v, want info entry", entry)
	}
	if entry.Data["status"] != http.StatusOK {
		t.Errorf("status = %v, want 200", entry.Data["status"])
	}
}
