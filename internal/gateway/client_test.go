package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestClientTranslateSuccess(t *testing.T) {
	t.Parallel()

	var gotQuery atomicValue
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/translate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotQuery.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"hola mundo","detected":"en"}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", server.Client(), zaptest.NewLogger(t))
	result, err := client.Translate(context.Background(), "hello world", "en", "es")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if result.TranslatedText != "hola mundo" || result.DetectedSourceLang != "en" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotQuery.Load() != "from=en&q=hello+world&to=es" {
		t.Fatalf("unexpected query: %q", gotQuery.Load())
	}
}

func TestClientOmitsAutoSource(t *testing.T) {
	t.Parallel()

	var gotQuery atomicValue
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"result":"bonjour","detected":"en"}`))
	}))
	defer server.Close()

	client := New(server.URL, server.Client(), nil)
	for _, source := range []string{"auto", ""} {
		if _, err := client.Translate(context.Background(), "hello", source, "fr"); err != nil {
			t.Fatalf("translate failed: %v", err)
		}
		if gotQuery.Load() != "q=hello&to=fr" {
			t.Fatalf("expected from to be omitted for %q, got %q", source, gotQuery.Load())
		}
	}
}

func TestClientRejectsWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := New(server.URL, server.Client(), nil)
	if _, err := client.Translate(context.Background(), "  ", "auto", "es"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := client.Translate(context.Background(), "hi", "auto", "auto"); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if _, err := client.Translate(context.Background(), "hi", "auto", ""); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network calls, got %d", calls.Load())
	}
}

func TestClientErrorResponses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetails string
	}{
		{"server error with body", 500, `{"error":"Translation failed","details":"quota"}`, "Translation failed", "quota"},
		{"bad request", 400, `{"error":"Missing q (query text) or to (target language) param"}`, "Missing q (query text) or to (target language) param", ""},
		{"non json", 502, `<html>bad gateway</html>`, "translation request failed: 502", ""},
		{"json without error", 503, `{}`, "translation request failed: 503", ""},
		{"ok without result", 200, `{"error":"quota exceeded"}`, "quota exceeded", ""},
		{"ok empty", 200, `{}`, "no result in translation response", ""},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))

		client := New(server.URL, server.Client(), nil)
		_, err := client.Translate(context.Background(), "hello", "auto", "es")
		server.Close()

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("%s: expected RequestError, got %v", tc.name, err)
		}
		if reqErr.Message != tc.wantMessage || reqErr.Details != tc.wantDetails || reqErr.StatusCode != tc.status {
			t.Fatalf("%s: unexpected error: %+v", tc.name, reqErr)
		}
		if !IsRequestError(err) {
			t.Fatalf("%s: expected IsRequestError", tc.name)
		}
	}
}

func TestClientMalformedSuccessBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":`))
	}))
	defer server.Close()

	_, err := New(server.URL, server.Client(), nil).Translate(context.Background(), "hello", "auto", "es")
	if err == nil || IsRequestError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestClientTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	if _, err := New(url, nil, nil).Translate(context.Background(), "hello", "auto", "es"); err == nil {
		t.Fatalf("expected transport error")
	}
}

type atomicValue struct {
	v atomic.Value
}

func (a *atomicValue) Store(s string) { a.v.Store(s) }

func (a *atomicValue) Load() string {
	s, _ := a.v.Load().(string)
	return s
}
