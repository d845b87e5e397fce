package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestStreamSSEFraming(t *testing.T) {
	recorder := httptest.NewRecorder()

	streamSSE(recorder, "第一行\n第二行")

	if got := recorder.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q, want text/event-stream", got)
	}

	want := "data: 第一行\n\ndata: 第二行\n\ndata: [DONE]\n\n"
	if got := recorder.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestStreamSSESingleLine(t *testing.T) {
	recorder := httptest.NewRecorder()

	streamSSE(recorder, "hello")

	want := "data: hello\n\ndata: [DONE]\n\n"
	if got := recorder.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestWriteJSONError(t *testing.T) {
	recorder := httptest.NewRecorder()

	writeJSONError(recorder, 404, "Session not found")

	if recorder.Code != 404 {
		t.Errorf("status = %d, want 404", recorder.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if payload["detail"] != "Session not found" {
		t.Errorf("detail = %q, want Session not found", payload["detail"])
	}
}
