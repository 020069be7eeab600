package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxBodySize = 1 << 20 // 1MiB
)

// TokenSource supplies the current bearer token, when one is present.
type TokenSource interface {
	Token() (string, bool)
}

// ClientConfig configures the HTTP executor.
type ClientConfig struct {
	// BaseURL is the base address of the banking API.
	BaseURL string
	// Tokens supplies the bearer token attached to authenticated requests.
	// May be nil, in which case no authorization header is ever sent.
	Tokens TokenSource
	// HTTPClient executes requests. When nil, a default client with a
	// conservative timeout is used.
	HTTPClient *http.Client
	// RateLimit caps outgoing requests per second. 0 disables limiting.
	RateLimit float64
	// RateBurst is the limiter burst size. Defaults to 1 when limiting.
	RateBurst int
	// MaxBodyBytes caps response bodies to prevent memory exhaustion.
	MaxBodyBytes int64
}

// Client executes endpoint operations against the configured base address,
// attaching the current bearer token when the endpoint requires one.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       TokenSource
	limiter      *rate.Limiter
	maxBodyBytes int64
}

// NewClient validates the base URL and builds an executor.
func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("cache: BaseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("cache: BaseURL must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("cache: BaseURL scheme must be http or https")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodySize
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   client,
		tokens:       cfg.Tokens,
		limiter:      limiter,
		maxBodyBytes: maxBodyBytes,
	}, nil
}

// Do executes one endpoint operation. Non-GET, non-DELETE operations send
// args as a JSON body. Failures of any kind are returned as *Problem; the
// second return value is the HTTP status, zero when no response was
// received.
func (c *Client) Do(ctx context.Context, ep Endpoint, args any) (json.RawMessage, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, &Problem{Message: err.Error()}
		}
	}

	var bodyReader io.Reader
	sendBody := args != nil && ep.Method != http.MethodGet && ep.Method != http.MethodDelete
	if sendBody {
		encoded, err := json.Marshal(args)
		if err != nil {
			return nil, 0, &Problem{Message: fmt.Sprintf("encode request body: %v", err)}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + ep.Path(args)
	req, err := http.NewRequestWithContext(ctx, ep.Method, endpoint, bodyReader)
	if err != nil {
		return nil, 0, &Problem{Message: fmt.Sprintf("create request: %v", err)}
	}
	if sendBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if !ep.Anonymous && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Problem{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, &Problem{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, resp.StatusCode, &Problem{
			Status:  resp.StatusCode,
			Body:    body,
			Message: resp.Status,
		}
	}

	return body, resp.StatusCode, nil
}
