package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"watch-deal-finder/internal/metrics"
	domain "watch-deal-finder/pkg/types"
)

const defaultPageSize = 100

// Client implements Source against an HTTP JSON feed endpoint.
type Client struct {
	baseURL     string
	client      *http.Client
	rateLimiter *RateLimiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter that controls per-second and daily
// call limits. When set, every Search() call goes through Wait() first.
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// NewClient creates a feed client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type feedItem struct {
	ItemID        string   `json:"item_id"`
	Title         string   `json:"title"`
	Brand         string   `json:"brand"`
	Price         *float64 `json:"price"`
	BuyItNowPrice *float64 `json:"buy_it_now_price"`
	TimeLeft      *string  `json:"time_left"`
	URL           string   `json:"url"`
	ImageURL      string   `json:"image_url"`
}

type feedAPIResponse struct {
	Items  []feedItem `json:"items"`
	Total  int        `json:"total"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
	Next   string     `json:"next"`
}

// Search implements Source.Search by querying the feed endpoint.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.FeedDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.FeedCallsTotal.Inc()
		metrics.FeedDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}

	u := c.buildSearchURL(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"feed API error (status %d): %s",
			resp.StatusCode,
			string(body),
		)
	}

	var apiResp feedAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return &SearchResponse{
		Snapshots: toSnapshots(apiResp.Items, req.Brand),
		Total:     apiResp.Total,
		Offset:    apiResp.Offset,
		Limit:     apiResp.Limit,
		HasMore:   apiResp.Next != "",
	}, nil
}

// toSnapshots converts feed items to snapshots. Items without their own
// brand inherit the brand that was searched for.
func toSnapshots(items []feedItem, brand string) []domain.ListingSnapshot {
	snaps := make([]domain.ListingSnapshot, 0, len(items))
	for _, it := range items {
		b := it.Brand
		if b == "" {
			b = brand
		}
		snaps = append(snaps, domain.ListingSnapshot{
			ItemID:        it.ItemID,
			Title:         it.Title,
			Brand:         b,
			Price:         it.Price,
			BuyItNowPrice: it.BuyItNowPrice,
			TimeLeft:      it.TimeLeft,
			URL:           it.URL,
			ImageURL:      it.ImageURL,
		})
	}
	return snaps
}

func (c *Client) buildSearchURL(req SearchRequest) string {
	params := url.Values{}
	params.Set("q", req.Brand)

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	params.Set("limit", strconv.Itoa(limit))

	if req.Offset > 0 {
		params.Set("offset", strconv.Itoa(req.Offset))
	}

	return c.baseURL + "?" + params.Encode()
}
