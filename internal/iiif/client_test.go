package iiif

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if _, err := w.Write([]byte(`{"width": 100, "height": 200}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{UserAgent: "Mozilla/5.0"})
	info, err := c.FetchInfo(context.Background(), srv.URL+"/iiif/page")
	if err != nil {
		t.Fatalf("FetchInfo: %v", err)
	}
	if gotUA != "Mozilla/5.0" {
		t.Errorf("expected browser-like User-Agent, got %q", gotUA)
	}
	if info.Width != 100 || info.Height != 200 {
		t.Errorf("unexpected size %dx%d", info.Width, info.Height)
	}
}

func TestFetchInfoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(ClientOptions{})
	_, err := c.FetchInfo(context.Background(), srv.URL+"/iiif/missing")
	var descErr *DescriptorError
	if !errors.As(err, &descErr) {
		t.Fatalf("expected DescriptorError, got %v", err)
	}
	if !strings.Contains(descErr.Error(), "404") {
		t.Errorf("expected status in message, got %q", descErr.Error())
	}
}

func TestFetchManifestBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("not json")); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{})
	_, err := c.FetchManifest(context.Background(), srv.URL+"/manifest.json")
	var manErr *ManifestError
	if !errors.As(err, &manErr) {
		t.Fatalf("expected ManifestError, got %v", err)
	}
}

func TestClientContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(ClientOptions{})
	if _, err := c.FetchImage(ctx, srv.URL+"/full/max/0/default.jpg"); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestDirectURLs(t *testing.T) {
	urls := DirectURLs("https://example.org/iiif/page/", 4000)
	want := []string{
		"https://example.org/iiif/page/full/4000,/0/default.jpg",
		"https://example.org/iiif/page/full/max/0/default.jpg",
		"https://example.org/iiif/page/full/full/0/default.jpg",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %d urls, want %d", len(urls), len(want))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}

	// Unknown width drops the explicit-width candidate.
	urls = DirectURLs("https://example.org/iiif/page", 0)
	if len(urls) != 2 || !strings.Contains(urls[0], "/full/max/") {
		t.Errorf("unexpected ladder without width: %v", urls)
	}
}

func TestTileURLs(t *testing.T) {
	urls := TileURLs("https://example.org/iiif/page", 512, 1024, 512, 136)
	want := []string{
		"https://example.org/iiif/page/512,1024,512,136/512,/0/default.jpg",
		"https://example.org/iiif/page/512,1024,512,136/pct:100/0/default.jpg",
		"https://example.org/iiif/page/512,1024,512,136/full/0/default.jpg",
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}
