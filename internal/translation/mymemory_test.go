package translation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestMyMemoryClient_RequestURL(t *testing.T) {
	client := NewMyMemoryClient("https://example.com/get", "", time.Second)

	raw := client.RequestURL("good morning & more")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Invalid URL %q: %v", raw, err)
	}

	if got := parsed.Query().Get("q"); got != "good morning & more" {
		t.Errorf("q = %q, want 'good morning & more'", got)
	}
	if got := parsed.Query().Get("langpair"); got != "en|pt-PT" {
		t.Errorf("langpair = %q, want 'en|pt-PT'", got)
	}
	if strings.Contains(raw, " ") {
		t.Errorf("URL is not encoded: %s", raw)
	}
	if parsed.Query().Has("de") {
		t.Error("Expected no 'de' parameter without email")
	}
}

func TestMyMemoryClient_RequestURL_Email(t *testing.T) {
	client := NewMyMemoryClient("https://example.com/get?key=abc", "me@example.com", time.Second)

	parsed, err := url.Parse(client.RequestURL("hi"))
	if err != nil {
		t.Fatalf("Invalid URL: %v", err)
	}
	if got := parsed.Query().Get("de"); got != "me@example.com" {
		t.Errorf("de = %q, want 'me@example.com'", got)
	}
	if got := parsed.Query().Get("key"); got != "abc" {
		t.Errorf("existing query lost, key = %q", got)
	}
}

func TestMyMemoryClient_DefaultEndpoint(t *testing.T) {
	client := NewMyMemoryClient("", "", time.Second)
	if !strings.HasPrefix(client.RequestURL("x"), DefaultMyMemoryEndpoint+"?") {
		t.Errorf("Expected default endpoint, got %s", client.RequestURL("x"))
	}
	if client.Name() != ProviderMyMemory {
		t.Errorf("Name() = %q", client.Name())
	}
}

func TestMyMemoryClient_Translate(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expected  string
		wantError error
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"responseData":{"translatedText":"Bom dia","match":1},"responseStatus":200}`,
			expected: "Bom dia",
		},
		{
			name:     "success with string status",
			status:   http.StatusOK,
			body:     `{"responseData":{"translatedText":" Olá "},"responseStatus":"200"}`,
			expected: "Olá",
		},
		{
			name:      "server error",
			status:    http.StatusInternalServerError,
			body:      `oops`,
			wantError: ErrRemoteUnavailable,
		},
		{
			name:      "quota reported in body",
			status:    http.StatusOK,
			body:      `{"responseData":{"translatedText":"MYMEMORY WARNING"},"responseStatus":429}`,
			wantError: ErrRemoteUnavailable,
		},
		{
			name:      "missing payload",
			status:    http.StatusOK,
			body:      `{"responseStatus":200}`,
			wantError: ErrRemoteMalformed,
		},
		{
			name:      "empty translation",
			status:    http.StatusOK,
			body:      `{"responseData":{"translatedText":""}}`,
			wantError: ErrRemoteMalformed,
		},
		{
			name:      "not json",
			status:    http.StatusOK,
			body:      `<html>`,
			wantError: ErrRemoteMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("Expected GET, got %s", r.Method)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewMyMemoryClient(server.URL, "", 2*time.Second)
			got, err := client.Translate(context.Background(), "good morning")

			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Fatalf("Expected error %v, got %v", tt.wantError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Translate failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Translate() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMyMemoryClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := NewMyMemoryClient(endpoint, "", time.Second)
	_, err := client.Translate(context.Background(), "good morning")
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestMyMemoryClient_SingleRequestPerCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewMyMemoryClient(server.URL, "", time.Second)
	if _, err := client.Translate(context.Background(), "x"); err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 request, got %d", calls)
	}
}
