package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/kscreener/pkg/config"
	"github.com/wonny/kscreener/pkg/httputil"
	"github.com/wonny/kscreener/pkg/logger"
	"github.com/wonny/kscreener/pkg/redis"
)

// ErrQuoteNotFound is returned when the service has no quote for a code
var ErrQuoteNotFound = errors.New("quote not found")

// Client handles communication with the remote screening service
// ⭐ SSOT: 랭킹 서비스 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cache      *redis.Cache
	baseURL    string
}

// NewClient creates a new screening service client. cache may be nil.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger, cache *redis.Cache) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cache:      cache,
		baseURL:    strings.TrimRight(cfg.Ranking.BaseURL, "/"),
	}
}

// GetTopList fetches the ranked list for the given query parameters
func (c *Client) GetTopList(ctx context.Context, params url.Values) (*TopListResponse, error) {
	cacheKey := "top10:" + params.Encode()

	if c.cache != nil {
		var cached TopListResponse
		if found, _ := c.cache.Get(ctx, cacheKey, &cached); found {
			return &cached, nil
		}
	}

	var resp TopListResponse
	if err := c.getJSON(ctx, "/top10", params, &resp); err != nil {
		return nil, fmt.Errorf("top list fetch failed: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, &resp, redis.TTLTopList); err != nil {
			c.logger.WithError(err).Debug("Top list cache write failed")
		}
	}

	return &resp, nil
}

// SearchSymbols looks up symbols by name or code. market may be empty.
func (c *Client) SearchSymbols(ctx context.Context, query, market string) ([]Symbol, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	if market != "" {
		params.Set("market", market)
	}

	var symbols []Symbol
	if err := c.getJSON(ctx, "/symbols", params, &symbols); err != nil {
		return nil, fmt.Errorf("symbol search failed: %w", err)
	}

	return symbols, nil
}

// GetQuote fetches the latest quote for one symbol code
func (c *Client) GetQuote(ctx context.Context, code string) (*Quote, error) {
	cacheKey := "quote:" + code

	if c.cache != nil {
		var cached Quote
		if found, _ := c.cache.Get(ctx, cacheKey, &cached); found {
			return &cached, nil
		}
	}

	resp, err := c.httpClient.Get(ctx, fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(code)))
	if err != nil {
		return nil, fmt.Errorf("quote fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote fetch failed: unexpected status code %d", resp.StatusCode)
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("quote decode failed: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, &quote, redis.TTLQuote); err != nil {
			c.logger.WithError(err).Debug("Quote cache write failed")
		}
	}

	return &quote, nil
}

// getJSON performs a GET and decodes the JSON body into dest
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
