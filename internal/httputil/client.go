// Package httputil provides the HTTP client used by every stage:
// session cookie injection, optional proxy, and redirect chain
// capture for region lock detection.
package httputil

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kani/internal/session"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; WOW64; rv:65.0) Gecko/20100101 Firefox/65.0"

// maxBodySize caps response bodies; playlists and subtitle scripts
// are small, pages are at most a few MB.
const maxBodySize = 20 * 1024 * 1024

// Options customize a single Fetch call.
type Options struct {
	Method      string
	Headers     map[string]string
	Body        string
	UseProxy    bool
	SkipCookies bool
}

// Result is the outcome of a successful Fetch.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Redirects lists every URL the request was redirected to, in
	// order. Empty when the request was served directly.
	Redirects []string
}

// Client wraps http.Client with session handling.
type Client struct {
	direct  *http.Client
	proxied *http.Client
	session *session.Session
}

// New builds a client. proxyURL may be empty; session may be nil for
// cookie-less use.
func New(sess *session.Session, proxyURL string) (*Client, error) {
	c := &Client{
		direct:  &http.Client{Timeout: 30 * time.Second, Transport: newTransport(nil)},
		session: sess,
	}

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Hostname() == "" || u.Port() == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", proxyURL)
		}
		c.proxied = &http.Client{
			Timeout:   10 * time.Second,
			Transport: newTransport(u),
		}
	}

	return c, nil
}

func newTransport(proxy *url.URL) *http.Transport {
	t := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		MaxIdleConnsPerHost: 5,
	}
	if proxy != nil {
		t.Proxy = http.ProxyURL(proxy)
	}
	return t
}

// Session exposes the client session for persistence after refreshes.
func (c *Client) Session() *session.Session { return c.session }

// Fetch performs one request. Cookies from the session are attached
// unless opts.SkipCookies is set, and Set-Cookie headers on the
// response refresh the session.
func (c *Client) Fetch(rawURL string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}

	req, err := http.NewRequest(method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	now := time.Now()
	if !opts.SkipCookies && c.session != nil {
		req.Header.Set("Cookie", c.session.CookieHeader(now))
	}

	httpClient := c.direct
	if opts.UseProxy && c.proxied != nil {
		httpClient = c.proxied
	}

	var redirects []string
	client := *httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("stopped after 10 redirects")
		}
		redirects = append(redirects, req.URL.String())
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if !opts.SkipCookies && c.session != nil {
		if updated := c.session.Refresh(resp.Header, false, now); len(updated) > 0 {
			// Best-effort persistence; an unwritable data dir must not
			// fail the request itself.
			_ = c.session.Save()
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Redirects:  redirects,
	}, nil
}

// FetchRaw performs a cookie-less GET with no session side effects,
// used for CDN playlist, segment and subtitle URLs. These URLs come
// from remote metadata, so they are validated before the request.
func (c *Client) FetchRaw(rawURL string, useProxy bool) ([]byte, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	res, err := c.Fetch(rawURL, &Options{SkipCookies: true, UseProxy: useProxy})
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}
