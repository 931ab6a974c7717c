package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

const (
	// DefaultMaxErrorBodyBytes caps the body copied into a RemoteRejected error.
	DefaultMaxErrorBodyBytes = 4 << 10

	// maxResponseBytes caps a success body; DOR answers are a few hundred bytes.
	maxResponseBytes = 1 << 20
)

// Lookuper resolves the tax rate for an address.
// Allows the real DOR client and test doubles to be swapped.
type Lookuper interface {
	Lookup(ctx context.Context, q models.AddressQuery) (*models.TaxInfo, error)
}

// HTTPDoer is the subset of *http.Client the lookup client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs single request/response lookups against a rate service.
//
// A Client holds no mutable state and is safe for concurrent use. It never
// retries, caches or logs: every call is exactly one outbound GET, and
// every failure is returned to the caller as a *LookupError.
type Client struct {
	baseURL    *url.URL
	httpClient HTTPDoer
	codec      Codec
	userAgent  string
	maxErrBody int64
}

type clientConfig struct {
	baseURL    string
	httpClient HTTPDoer
	codec      Codec
	userAgent  string
	maxErrBody int64
}

type Option interface{ apply(*clientConfig) }

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// WithBaseURL points the client at a different endpoint (a mirror, or a test server).
func WithBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) { c.baseURL = baseURL })
}

// WithHTTPClient replaces the HTTP client. Timeouts configured on it
// bound every lookup.
func WithHTTPClient(hc HTTPDoer) Option {
	return optionFunc(func(c *clientConfig) { c.httpClient = hc })
}

// WithCodec swaps the wire format. DORCodec is the default.
func WithCodec(codec Codec) Option {
	return optionFunc(func(c *clientConfig) { c.codec = codec })
}

func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) { c.userAgent = ua })
}

func WithMaxErrorBodyBytes(n int64) Option {
	return optionFunc(func(c *clientConfig) { c.maxErrBody = n })
}

// New builds a Client for the DOR service plus the provided options.
func New(opts ...Option) (*Client, error) {
	cfg := clientConfig{
		baseURL:    DefaultBaseURL,
		codec:      DORCodec{},
		userAgent:  "wataxrate",
		maxErrBody: DefaultMaxErrorBodyBytes,
	}
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}

	u, err := url.Parse(strings.TrimSpace(cfg.baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: must be absolute", cfg.baseURL)
	}
	if cfg.codec == nil {
		return nil, errors.New("codec must not be nil")
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Transport: DefaultTransport()}
	}
	if cfg.maxErrBody <= 0 {
		cfg.maxErrBody = DefaultMaxErrorBodyBytes
	}

	return &Client{
		baseURL:    u,
		httpClient: cfg.httpClient,
		codec:      cfg.codec,
		userAgent:  cfg.userAgent,
		maxErrBody: cfg.maxErrBody,
	}, nil
}

// DefaultTransport returns a clone of http.DefaultTransport with bounded
// connection setup. It sets no response timeout; callers bound a lookup
// through its context.
func DefaultTransport() *http.Transport {
	base, _ := http.DefaultTransport.(*http.Transport)
	if base == nil {
		return &http.Transport{}
	}
	t := base.Clone()
	t.DialContext = (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.TLSHandshakeTimeout = 5 * time.Second
	t.IdleConnTimeout = 90 * time.Second
	return t
}

// Get looks up the tax rate for street, city and zip.
func (c *Client) Get(ctx context.Context, street, city, zip string) (*models.TaxInfo, error) {
	return c.Lookup(ctx, models.AddressQuery{Street: street, City: city, ZIP: zip})
}

// Lookup implements Lookuper. It issues exactly one GET request.
func (c *Client) Lookup(ctx context.Context, q models.AddressQuery) (*models.TaxInfo, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reqURL := c.RequestURL(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, &LookupError{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LookupError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, c.maxErrBody))
		le := &LookupError{Kind: KindRemoteRejected, StatusCode: resp.StatusCode, Body: string(raw)}
		if msg := strings.TrimSpace(le.Body); msg != "" {
			le.Err = errors.New(msg)
		}
		return nil, le
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &LookupError{Kind: KindNetwork, Err: fmt.Errorf("read response body: %w", err)}
	}
	if len(body) > maxResponseBytes {
		return nil, &LookupError{Kind: KindDecode, Err: fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)}
	}

	info, err := c.codec.Decode(body)
	if err != nil {
		if le, ok := AsLookupError(err); ok {
			return nil, le
		}
		return nil, &LookupError{Kind: KindDecode, Err: err}
	}
	if info == nil {
		return nil, &LookupError{Kind: KindDecode, Err: errors.New("codec returned no result")}
	}
	return info, nil
}

// RequestURL returns the URL a lookup for q is sent to. Parameters from the
// codec replace same-named parameters already present on the base URL.
func (c *Client) RequestURL(q models.AddressQuery) *url.URL {
	u := *c.baseURL
	values := u.Query()
	for k, vv := range c.codec.Encode(q) {
		values[k] = vv
	}
	u.RawQuery = values.Encode()
	return &u
}
