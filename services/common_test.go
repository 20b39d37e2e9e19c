package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRoundTo(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{12.345, 2, 12.35},
		{12.344, 2, 12.34},
		{-0.15, 1, -0.2},
		{99.999, 2, 100},
		{7.5, 0, 8},
	}
	for _, tt := range tests {
		if got := RoundTo(tt.x, tt.places); got != tt.want {
			t.Errorf("RoundTo(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(120, 0, 100); got != 100 {
		t.Errorf("Clamp(120) = %v", got)
	}
	if got := Clamp(-3, 0, 100); got != 0 {
		t.Errorf("Clamp(-3) = %v", got)
	}
	if got := Clamp(42, 0, 100); got != 42 {
		t.Errorf("Clamp(42) = %v", got)
	}
}

func TestHttpRequest(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := HttpRequest(http.MethodPost, server.URL, map[string]string{"X-Task": "7"}, map[string]int{"task_id": 7})
	if err != nil {
		t.Fatalf("HttpRequest() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
	if got["task_id"] != float64(7) {
		t.Errorf("server received %v", got)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	if _, err := HttpRequest(http.MethodGet, failing.URL, nil, nil); err == nil {
		t.Error("expected error on 500")
	}
}
