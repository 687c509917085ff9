package mailparse

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchSkipsFailuresAndKeepsRest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/banner.png":
			w.Write([]byte("banner-bytes"))
		case "/missing.png":
			http.NotFound(w, r)
		case "/photo.jpg":
			w.Write([]byte("photo-bytes"))
		}
	}))
	defer srv.Close()

	f := &Fetcher{Client: srv.Client(), Logger: testLogger()}
	images := f.Fetch(t.Context(), []string{
		srv.URL + "/banner.png",
		srv.URL + "/missing.png",
		srv.URL + "/photo.jpg",
	})

	if len(images) != 2 {
		t.Fatalf("images: got %d, want 2", len(images))
	}
	if images[0].Name != "banner.png" || string(images[0].Data) != "banner-bytes" {
		t.Errorf("images[0]: got %q/%q", images[0].Name, images[0].Data)
	}
	if images[1].Name != "photo.jpg" || string(images[1].Data) != "photo-bytes" {
		t.Errorf("images[1]: got %q/%q", images[1].Name, images[1].Data)
	}
}

func TestFetchUnreachableHostIsSkipped(t *testing.T) {
	t.Parallel()

	f := &Fetcher{Logger: testLogger()}
	images := f.Fetch(t.Context(), []string{"http://127.0.0.1:1/nope.png"})
	if len(images) != 0 {
		t.Fatalf("images: got %d, want 0", len(images))
	}
}

func TestImageNameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/a/b/banner.png", "banner.png"},
		{"https://example.com/photo.JPG?w=300", "photo.JPG"},
		{"https://example.com/chart", "chart.png"},
		{"https://example.com/", "image_from_url.png"},
		{"https://example.com/anim.webp", "anim.webp"},
	}
	for _, tt := range tests {
		if got := imageNameFromURL(tt.url); got != tt.want {
			t.Errorf("imageNameFromURL(%q): got %q, want %q", tt.url, got, tt.want)
		}
	}
}
