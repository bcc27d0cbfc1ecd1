package dbpedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, 0, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestCoverFileName(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{"results": {"bindings": [{"cover": {"type": "literal", "value": "Sia - 1000 Forms of Fear.png"}}]}}`))
	})

	name, err := client.CoverFileName(context.Background(), "Sia", "1000 Forms of Fear")
	if err != nil {
		t.Fatalf("CoverFileName: %v", err)
	}
	if name != "Sia - 1000 Forms of Fear.png" {
		t.Errorf("cover = %q", name)
	}
	for _, want := range []string{`"1000 forms of fear"`, `"sia"`, "dbp:cover"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query missing %s: %s", want, gotQuery)
		}
	}
}

func TestCoverFileNameNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": {"bindings": []}}`))
	})

	name, err := client.CoverFileName(context.Background(), "Nobody", "Nothing")
	if err != nil {
		t.Fatalf("CoverFileName: %v", err)
	}
	if name != "" {
		t.Errorf("expected empty name, got %q", name)
	}
}

func TestCoverFileNameServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	if _, err := client.CoverFileName(context.Background(), "Sia", "Chandelier"); err == nil {
		t.Fatal("expected error from 503 response")
	}
}

func TestSparqlString(t *testing.T) {
	got := sparqlString(`the "best" of`)
	want := `"the \"best\" of"`
	if got != want {
		t.Errorf("sparqlString = %s, want %s", got, want)
	}
}
