package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, "tonearm-test/1.0", 0, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestFindCoverImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			if q.Get("srsearch") != "Sia 1000 Forms of Fear album" {
				t.Errorf("srsearch = %q", q.Get("srsearch"))
			}
			w.Write([]byte(`{"query": {"search": [{"title": "1000 Forms of Fear"}]}}`))
		case q.Get("prop") == "images":
			w.Write([]byte(`{"query": {"pages": {"123": {"images": [
				{"title": "File:Wiki letter w.svg"},
				{"title": "File:Commons-logo.png"},
				{"title": "File:Sia - 1000 Forms of Fear.png"},
				{"title": "File:Sia live 2011.jpg"}
			]}}}}`))
		case q.Get("prop") == "imageinfo":
			if q.Get("titles") != "File:Sia - 1000 Forms of Fear.png" {
				t.Errorf("titles = %q", q.Get("titles"))
			}
			w.Write([]byte(`{"query": {"pages": {"456": {"imageinfo": [{"url": "https://upload.example/cover.png"}]}}}}`))
		default:
			t.Errorf("unexpected request: %s", r.URL.String())
		}
	})

	url, err := client.FindCoverImage(context.Background(), "Sia", "1000 Forms of Fear")
	if err != nil {
		t.Fatalf("FindCoverImage: %v", err)
	}
	if url != "https://upload.example/cover.png" {
		t.Errorf("url = %q", url)
	}
}

func TestFindCoverImageNoArticle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {"search": []}}`))
	})

	url, err := client.FindCoverImage(context.Background(), "Nobody", "Nothing")
	if err != nil {
		t.Fatalf("FindCoverImage: %v", err)
	}
	if url != "" {
		t.Errorf("expected empty url, got %q", url)
	}
}

func TestImageURLAddsFilePrefix(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("titles") != "File:Cover.jpg" {
			t.Errorf("titles = %q", r.URL.Query().Get("titles"))
		}
		w.Write([]byte(`{"query": {"pages": {"1": {"imageinfo": [{"url": "https://upload.example/c.jpg"}]}}}}`))
	})

	url, err := client.ImageURL(context.Background(), "Cover.jpg")
	if err != nil {
		t.Fatalf("ImageURL: %v", err)
	}
	if url != "https://upload.example/c.jpg" {
		t.Errorf("url = %q", url)
	}
}

func TestPickCoverImage(t *testing.T) {
	cases := []struct {
		name  string
		names []string
		album string
		want  string
	}{
		{
			name: "album tokens beat generic cover",
			names: []string{
				"File:Some other cover.jpg",
				"File:Artist - Great Album cover.jpg",
			},
			album: "Great Album",
			want:  "File:Artist - Great Album cover.jpg",
		},
		{
			name:  "svg and logos excluded",
			names: []string{"File:Great Album.svg", "File:Site-logo.png"},
			album: "Great Album",
			want:  "",
		},
		{
			name:  "falls back to any plausible image",
			names: []string{"File:Band photo.jpg"},
			album: "Great Album",
			want:  "File:Band photo.jpg",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pickCoverImage(tc.names, tc.album); got != tc.want {
				t.Errorf("pickCoverImage = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	if _, err := client.FindCoverImage(context.Background(), "Sia", "Chandelier"); err == nil {
		t.Fatal("expected error from 502 response")
	}
}
