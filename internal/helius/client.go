package helius

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// pageSize is the maximum number of transactions per Helius API call.
	pageSize = 100

	defaultBaseURL = "https://api.helius.xyz"
	defaultTimeout = 30 * time.Second
)

// ErrMissingAPIKey indicates the Helius API key is not configured.
var ErrMissingAPIKey = errors.New("helius api key is required")

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("helius api returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client communicates with the Helius enhanced transactions API. It holds no
// per-address state and is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	nowFn      func() time.Time
}

// NewClient creates a new Helius API client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		nowFn:      time.Now,
	}, nil
}

// WithClock overrides the time provider (used primarily in tests).
func (c *Client) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		c.nowFn = nowFn
	}
}

// FetchTransactions pages backwards through an address's history until
// maxCount records are collected, the history is exhausted, or records fall
// outside the sinceDays window.
func (c *Client) FetchTransactions(ctx context.Context, address string, maxCount, sinceDays int) ([]EnhancedTransaction, error) {
	since := Since(c.nowFn(), sinceDays)
	var all []EnhancedTransaction
	var beforeSig string

	for page := 0; maxCount <= 0 || len(all) < maxCount; page++ {
		limit := pageSize
		if maxCount > 0 && maxCount-len(all) < limit {
			limit = maxCount - len(all)
		}

		txns, err := c.fetchPage(ctx, address, beforeSig, limit)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(txns) == 0 {
			break
		}

		kept := TrimWindow(txns, 0, since)
		all = append(all, kept...)

		// Results are newest first, so a dropped record means the window is exhausted.
		if len(kept) < len(txns) || len(txns) < limit {
			break
		}
		beforeSig = txns[len(txns)-1].Signature
	}

	return TrimWindow(all, maxCount, time.Time{}), nil
}

func (c *Client) fetchPage(ctx context.Context, address, beforeSig string, limit int) ([]EnhancedTransaction, error) {
	endpoint := fmt.Sprintf("%s/v0/addresses/%s/transactions", c.baseURL, url.PathEscape(address))

	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("limit", strconv.Itoa(limit))
	if beforeSig != "" {
		params.Set("before", beforeSig)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	txns, _, err := DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return txns, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
