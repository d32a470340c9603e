package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

func TestClient_Classify(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		wantErr      bool
		wantLabel    string
		wantProbs    domain.EmotionVector
	}{
		{
			name:         "Success",
			status:       http.StatusOK,
			responseBody: `{"data":{"label":"happy","score":0.91,"probs":[0.01,0.02,0.05,0.91,0.01]}}`,
			wantErr:      false,
			wantLabel:    "happy",
			wantProbs:    domain.EmotionVector{0.01, 0.02, 0.05, 0.91, 0.01},
		},
		{
			name:         "Engine error with message",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":{"message":"no face detected"}}`,
			wantErr:      true,
		},
		{
			name:         "Distribution with wrong width",
			status:       http.StatusOK,
			responseBody: `{"data":{"label":"happy","score":0.91,"probs":[0.5,0.5]}}`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var gotImage []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/analyze" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if r.Method != http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				file, _, err := r.FormFile("image")
				if err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				defer file.Close()
				gotImage, _ = io.ReadAll(file)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient(srv.URL)
			result, err := client.Classify(context.Background(), []byte("fake-jpeg-bytes"))

			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if string(gotImage) != "fake-jpeg-bytes" {
				t.Fatalf("engine did not receive the image bytes")
			}
			if result.Label != tt.wantLabel {
				t.Fatalf("expected label %q, got %q", tt.wantLabel, result.Label)
			}
			if result.Probs != tt.wantProbs {
				t.Fatalf("expected probs %v, got %v", tt.wantProbs, result.Probs)
			}
		})
	}
}

func TestClient_Healthy(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		want         bool
	}{
		{name: "ready", status: http.StatusOK, responseBody: `{"status":"ready"}`, want: true},
		{name: "not ready", status: http.StatusServiceUnavailable, responseBody: `{"status":"not_ready"}`, want: false},
		{name: "garbage body", status: http.StatusOK, responseBody: `nope`, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient(srv.URL)
			if got := client.Healthy(context.Background()); got != tt.want {
				t.Fatalf("expected healthy=%v, got %v", tt.want, got)
			}
		})
	}
}
