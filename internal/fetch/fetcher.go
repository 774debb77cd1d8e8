package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/m-adamski/timeseries-data-provider/internal/source"
)

const (
	// RequestNameHeader carries the source name on every outbound request.
	RequestNameHeader = "X-Custom-Request-Name"

	// maxBodySize caps how much of a response body is read (4MB).
	maxBodySize = 4 << 20

	userAgent = "tsprovider"
)

// Fetcher reads current values from remote sources over HTTP.
// It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher. A nil client means http.DefaultClient.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Fetch performs the request described by def.Fetch and extracts its value.
//
// A positive def.Fetch.Timeout bounds the whole exchange; otherwise only ctx
// does.
func (f *Fetcher) Fetch(ctx context.Context, def source.Definition) (float64, error) {
	cfg := def.Fetch

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := newRequest(ctx, def.Name, cfg)
	if err != nil {
		return 0, fmt.Errorf("%w: building request: %w", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize)) //nolint:errcheck // Drain for connection reuse
		return 0, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, fmt.Errorf("%w: reading body: %w", ErrFetch, err)
	}

	return Extract(cfg, body)
}

// newRequest builds the outbound request for a source.
func newRequest(ctx context.Context, name string, cfg source.FetchConfig) (*http.Request, error) {
	var body io.Reader
	if cfg.Body != "" {
		body = strings.NewReader(cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(RequestNameHeader, name)

	if cfg.Username != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}

	return req, nil
}

// Extract turns a response body into a value according to cfg.Format.
func Extract(cfg source.FetchConfig, body []byte) (float64, error) {
	switch cfg.Format {
	case source.FormatText:
		return extractText(body)
	case source.FormatPrometheus:
		return extractPrometheus(body, cfg.Metric)
	case source.FormatJSON, "":
		return extractJSON(body, cfg.ValuePath)
	default:
		return 0, fmt.Errorf("%w: unsupported format %q", ErrMalformedResponse, cfg.Format)
	}
}
