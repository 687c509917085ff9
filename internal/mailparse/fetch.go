package mailparse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// fetchTimeout bounds each external image download.
const fetchTimeout = 5 * time.Second

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// FetchedImage is one externally hosted image downloaded for a message.
type FetchedImage struct {
	Name string
	Data []byte
}

// Fetcher downloads the external images an HTML body links to. A nil
// Client gets a default one with the per-fetch timeout applied.
type Fetcher struct {
	Client *http.Client
	Logger *slog.Logger
}

// Fetch downloads each URL in order. Failures (non-2xx, timeout,
// unreadable body) skip that image with a warning; the caller delivers
// whatever was resolved. Names come from the URL's trailing path
// segment, defaulting to a generic name, with a default image extension
// appended when the name lacks a recognized one.
func (f *Fetcher) Fetch(ctx context.Context, urls []string) []FetchedImage {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	var images []FetchedImage
	for _, u := range urls {
		data, err := f.fetchOne(ctx, client, u)
		if err != nil {
			f.Logger.Warn("external image fetch failed", "url", u, "error", err)
			continue
		}
		images = append(images, FetchedImage{
			Name: imageNameFromURL(u),
			Data: data,
		})
	}
	return images
}

func (f *Fetcher) fetchOne(ctx context.Context, client *http.Client, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPartBytes))
}

// imageNameFromURL derives an artifact filename from the URL path.
func imageNameFromURL(u string) string {
	name := ""
	if parsed, err := url.Parse(u); err == nil {
		name = path.Base(parsed.Path)
	}
	if name == "" || name == "." || name == "/" {
		name = "image_from_url"
	}

	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return name
		}
	}
	return name + ".png"
}
