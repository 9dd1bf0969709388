package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:     "Simple map",
			input:    map[string]string{"status": "ok"},
			expected: `{"status":"ok"}`,
		},
		{
			name:     "String slice",
			input:    []string{"a", "b"},
			expected: `["a","b"]`,
		},
		{
			name:     "Empty slice",
			input:    []string{},
			expected: `[]`,
		},
		{
			name:     "Null",
			input:    nil,
			expected: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeJSON(rec, tt.input)

			if got := strings.TrimSpace(rec.Body.String()); got != tt.expected {
				t.Errorf("writeJSON() body = %q, expected %q", got, tt.expected)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("writeJSON() content type = %q", ct)
			}
		})
	}
}

func TestWriteFailure(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeFailure(rec, "something broke", http.StatusBadRequest)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("writeFailure() status = %d, expected 400", rec.Code)
	}

	body := decodeBody(t, rec.Body)
	if body["status"] != "failed" {
		t.Errorf("writeFailure() status field = %v", body["status"])
	}
	if body["message"] != "something broke" {
		t.Errorf("writeFailure() message = %v", body["message"])
	}
}
