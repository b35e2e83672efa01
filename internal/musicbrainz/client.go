package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cdrip/internal/logging"
	"cdrip/internal/services"
)

const (
	// DefaultBaseURL is the public web service root.
	DefaultBaseURL = "https://musicbrainz.org/ws/2"
	// DefaultTimeout bounds one lookup.
	DefaultTimeout = 15 * time.Second

	lookupIncludes = "recordings+artist-credits"
	stageLookup    = "lookup"
)

// Lookuper fetches the raw release list for a disc identifier.
type Lookuper interface {
	LookupDiscID(ctx context.Context, discID string) (*Response, error)
}

// Client provides access to the MusicBrainz discid endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Lookuper = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a MusicBrainz client. userAgent must identify the application
// and a contact, as the service requires.
func New(baseURL, userAgent string, opts ...Option) (*Client, error) {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "musicbrainz")
	return client, nil
}

// LookupDiscID performs GET <base>/discid/<id>?inc=recordings+artist-credits.
func (c *Client) LookupDiscID(ctx context.Context, discID string) (*Response, error) {
	discID = strings.TrimSpace(discID)
	if discID == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageLookup, "build request", "disc id must not be empty", nil)
	}
	endpoint := fmt.Sprintf("%s/discid/%s?inc=%s", c.baseURL, url.PathEscape(discID), lookupIncludes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageLookup, "build request", "", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stageLookup, "execute request", fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("musicbrainz lookup completed",
		logging.String("disc_id", discID),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, services.Wrap(err, stageLookup, "lookup disc id", fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, stageLookup, "decode response", "", err)
	}
	return &payload, nil
}

// classifyStatus maps an HTTP status to a failure marker; nil means success.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return services.ErrNotFound
	case code == http.StatusTooManyRequests, code == http.StatusServiceUnavailable:
		return services.ErrRateLimited
	default:
		return services.ErrTransport
	}
}
