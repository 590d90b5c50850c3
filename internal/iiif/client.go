package iiif

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultUserAgent is sent on every request; some IIIF deployments refuse
// clients without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0"

// DefaultTimeout bounds each individual HTTP request.
const DefaultTimeout = 30 * time.Second

// ClientOptions configures a Client. Zero values fall back to the package
// defaults.
type ClientOptions struct {
	UserAgent string
	Timeout   time.Duration

	// SkipTLSVerify disables certificate verification, but only for hosts
	// matching a suffix in InsecureHosts. All other hosts always verify.
	SkipTLSVerify bool
	InsecureHosts []string
}

// Client issues the manifest, descriptor and image requests of one
// download. It is safe for concurrent use.
type Client struct {
	http          *http.Client
	insecure      *http.Client
	userAgent     string
	insecureHosts []string
}

// NewClient builds a Client from options.
func NewClient(opts ClientOptions) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	c := &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
	}
	if opts.SkipTLSVerify && len(opts.InsecureHosts) > 0 {
		c.insecureHosts = opts.InsecureHosts
		c.insecure = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	return c
}

func (c *Client) clientFor(rawURL string) *http.Client {
	if c.insecure == nil {
		return c.http
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return c.http
	}
	host := u.Hostname()
	for _, suffix := range c.insecureHosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return c.insecure
		}
	}
	return c.http
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.clientFor(rawURL).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// FetchManifest retrieves and decodes a Presentation API manifest.
func (c *Client) FetchManifest(ctx context.Context, manifestURL string) (*Manifest, error) {
	body, err := c.get(ctx, manifestURL)
	if err != nil {
		return nil, &ManifestError{URL: manifestURL, Err: err}
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, &ManifestError{URL: manifestURL, Err: fmt.Errorf("decoding manifest: %w", err)}
	}
	return &m, nil
}

// FetchInfo retrieves and decodes the info.json descriptor of an Image API
// service.
func (c *Client) FetchInfo(ctx context.Context, service string) (*Info, error) {
	infoURL := strings.TrimRight(service, "/") + "/info.json"
	body, err := c.get(ctx, infoURL)
	if err != nil {
		return nil, &DescriptorError{Service: service, Err: err}
	}
	info, err := ParseInfo(body)
	if err != nil {
		return nil, &DescriptorError{Service: service, Err: err}
	}
	return info, nil
}

// FetchImage retrieves raw image bytes from an Image API request URL.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	return c.get(ctx, imageURL)
}

// DirectURLs is the full-region request ladder, best first: the intrinsic
// width spelled out, the level 2 "max" keyword, then the legacy "full".
func DirectURLs(service string, width int) []string {
	service = strings.TrimRight(service, "/")
	urls := []string{
		fmt.Sprintf("%s/full/max/0/default.jpg", service),
		fmt.Sprintf("%s/full/full/0/default.jpg", service),
	}
	if width > 0 {
		urls = append([]string{fmt.Sprintf("%s/full/%d,/0/default.jpg", service, width)}, urls...)
	}
	return urls
}

// TileURLs is the request ladder for one region at full scale: exact pixel
// width first so the server cannot downsample, then pct:100, then full.
func TileURLs(service string, x, y, w, h int) []string {
	service = strings.TrimRight(service, "/")
	region := fmt.Sprintf("%d,%d,%d,%d", x, y, w, h)
	return []string{
		fmt.Sprintf("%s/%s/%d,/0/default.jpg", service, region, w),
		fmt.Sprintf("%s/%s/pct:100/0/default.jpg", service, region),
		fmt.Sprintf("%s/%s/full/0/default.jpg", service, region),
	}
}
