package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Noodlesalat/sms2mail/internal/forwarder"
)

func newTestRouter() (*gin.Engine, *forwarder.Forwarder) {
	gin.SetMode(gin.TestMode)

	messageForwarder := forwarder.NewForwarder(nil, nil, forwarder.Options{})
	app := &AppContext{Forwarder: messageForwarder}
	return BuildGinRouter(app), messageForwarder
}

func performRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestHealthzRoute(t *testing.T) {
	router, _ := newTestRouter()

	recorder := performRequest(router, "/healthz")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
}

func TestStatusRoute(t *testing.T) {
	router, messageForwarder := newTestRouter()
	messageForwarder.Stats().MessageSeen()
	messageForwarder.Stats().MessageSent()

	recorder := performRequest(router, "/v1/status")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var response struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
		Msg  string                 `json:"msg"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if response.Code != http.StatusOK || response.Msg != "success" {
		t.Errorf("envelope = %d/%q, want 200/success", response.Code, response.Msg)
	}
	if got := response.Data["messages_sent"]; got != float64(1) {
		t.Errorf("messages_sent = %v, want 1", got)
	}
}

func TestModemRouteBeforeDiscovery(t *testing.T) {
	router, _ := newTestRouter()

	recorder := performRequest(router, "/v1/modem")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestModemRouteAfterDiscovery(t *testing.T) {
	router, messageForwarder := newTestRouter()
	messageForwarder.Stats().ModemObserved(forwarder.ModemIdentity{
		Path:  "/org/freedesktop/ModemManager1/Modem/0",
		Model: "EC25",
	})

	recorder := performRequest(router, "/v1/modem")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var response struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Data["model"] != "EC25" {
		t.Errorf("model = %v, want EC25", response.Data["model"])
	}
}

func TestCORSPreflightRoute(t *testing.T) {
	router, _ := newTestRouter()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodOptions, "/v1/status", nil)
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 for preflight", recorder.Code)
	}
	if origin := recorder.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", origin)
	}
}
