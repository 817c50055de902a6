// Package brokergw provides a client for the broker gateway API, which
// fronts the individual broker integrations (Zerodha, Upstox, Angel One)
// behind one position-fetch surface.
package brokergw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://gateway.folioworks.in"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the BrokerClient interface against the gateway.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new broker gateway client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type positionsResponse struct {
	Data []struct {
		Symbol   string          `json:"symbol"`
		Quantity decimal.Decimal `json:"quantity"`
		Lots     int64           `json:"lots"`
		BuyPrice decimal.Decimal `json:"buy_price"`
		Category string          `json:"category"`
	} `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// FetchPositions retrieves the current position snapshot for one linked
// account. An auth rejection from the gateway (the broker token behind the
// account has lapsed) comes back tagged with models.NewTokenExpiredError so
// the sync layer can deactivate the account.
func (c *Client) FetchPositions(ctx context.Context, account *models.BrokerAccount) ([]models.RawPosition, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	path := fmt.Sprintf("/v1/brokers/%s/positions", account.Broker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Broker-Token", account.AccessToken)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("broker", string(account.Broker)).
		Str("account", account.ID).
		Msg("Broker gateway positions request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewBrokerError(account.Broker, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized:
		return nil, models.NewTokenExpiredError(account.Broker, models.TokenExpiryExpired, apiError(resp, path))
	case http.StatusForbidden:
		return nil, models.NewTokenExpiredError(account.Broker, models.TokenExpiryRevoked, apiError(resp, path))
	default:
		return nil, models.NewBrokerError(account.Broker, apiError(resp, path))
	}

	var payload positionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, models.NewBrokerError(account.Broker, fmt.Errorf("failed to decode response: %w", err))
	}

	positions := make([]models.RawPosition, len(payload.Data))
	for i, p := range payload.Data {
		positions[i] = models.RawPosition{
			Symbol:   p.Symbol,
			Quantity: p.Quantity,
			Lots:     p.Lots,
			BuyPrice: p.BuyPrice,
			Category: models.PositionCategory(p.Category),
		}
	}

	return positions, nil
}

// apiError reads the gateway error body into a plain error.
func apiError(resp *http.Response, endpoint string) error {
	body, _ := io.ReadAll(resp.Body)
	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return fmt.Errorf("gateway error: %s (status: %d, endpoint: %s)", parsed.Error, resp.StatusCode, endpoint)
	}
	return fmt.Errorf("gateway error: %s (status: %d, endpoint: %s)", string(body), resp.StatusCode, endpoint)
}

// Ensure Client implements BrokerClient
var _ interfaces.BrokerClient = (*Client)(nil)
