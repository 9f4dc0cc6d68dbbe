package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestClient_Probe(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantExists bool
		wantErr    bool
	}{
		{"ok", http.StatusOK, true, false},
		{"not found", http.StatusNotFound, false, false},
		{"no content", http.StatusNoContent, false, false},
		{"forbidden", http.StatusForbidden, false, true},
		{"server error", http.StatusInternalServerError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead {
					t.Errorf("method = %s, want HEAD", r.Method)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(ClientConfig{})
			exists, err := client.Probe(context.Background(), server.URL+"/01.mp3?_=1")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				var te *TransportError
				if !errors.As(err, &te) {
					t.Fatalf("error %v is not a *TransportError", err)
				}
				if te.StatusCode != tt.status {
					t.Errorf("StatusCode = %d, want %d", te.StatusCode, tt.status)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if exists != tt.wantExists {
				t.Errorf("exists = %v, want %v", exists, tt.wantExists)
			}
		})
	}
}

func TestClient_ProbeNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL + "/01.mp3"
	server.Close()

	client := NewClient(ClientConfig{})
	_, err := client.Probe(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if !IsTransportError(err) {
		t.Errorf("IsTransportError(%v) = false, want true", err)
	}
}

func TestClient_Headers(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Token")
	}))
	defer server.Close()

	client := NewClient(ClientConfig{Headers: map[string]string{"X-Token": "abc"}})
	if _, err := client.Probe(context.Background(), server.URL); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
	}
	if gotCustom != "abc" {
		t.Errorf("X-Token = %q, want %q", gotCustom, "abc")
	}
}

func TestClient_DownloadFile(t *testing.T) {
	content := []byte("ID3 fake mp3 payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "audio_01.mp3")
	client := NewClient(ClientConfig{UserAgent: "test"})

	var lastWritten int64
	err := client.DownloadFile(context.Background(), server.URL, dest, func(written, total int64) {
		lastWritten = written
	})
	if err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
	if lastWritten != int64(len(content)) {
		t.Errorf("progress written = %d, want %d", lastWritten, len(content))
	}
}

func TestClient_DownloadFileErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "audio_02.mp3")
	client := NewClient(ClientConfig{})

	err := client.DownloadFile(context.Background(), server.URL, dest, nil)
	if !IsTransportError(err) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("destination should not be created on error status")
	}
}

func TestClient_DownloadBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cover"))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{})
	data, err := client.DownloadBytes(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("DownloadBytes failed: %v", err)
	}
	if string(data) != "cover" {
		t.Errorf("data = %q, want %q", data, "cover")
	}
}
