package cards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/youruser/deckbuilder/internal/util"
)

// DefaultBaseURL is the public YGOPRODeck card endpoint.
const DefaultBaseURL = "https://db.ygoprodeck.com/api/v7/cardinfo.php"

type cardInfoResponse struct {
	Data []Card `json:"data"`
}

// Client is a Catalog backed by the YGOPRODeck REST API. Results are memoized
// per distinct query for the lifetime of the Client.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]Card
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    util.DefaultClient,
		logger:  zap.NewNop(),
		cache:   make(map[string][]Card),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns up to limit cards matching filters (DefaultLimit when limit <= 0).
func (c *Client) Search(ctx context.Context, filters SearchFilters, limit int) ([]Card, error) {
	cards, err := c.query(ctx, filters.Values())
	if err != nil {
		return nil, err
	}
	return clampLimit(cards, limit), nil
}

// Card fetches a single card by id.
func (c *Client) Card(ctx context.Context, id int) (Card, error) {
	cards, err := c.query(ctx, url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return Card{}, err
	}
	if len(cards) == 0 {
		return Card{}, ErrCardNotFound
	}
	return cards[0], nil
}

func (c *Client) cached(key string) ([]Card, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cards, ok := c.cache[key]
	return cards, ok
}

func (c *Client) query(ctx context.Context, params url.Values) ([]Card, error) {
	key := params.Encode()
	if cards, ok := c.cached(key); ok {
		return cards, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if cards, ok := c.cached(key); ok {
			return cards, nil
		}
		u := c.baseURL
		if key != "" {
			u += "?" + key
		}
		body, err := util.GetBytes(ctx, c.http, u)
		var se *util.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusBadRequest {
			// The API answers 400 when nothing matches.
			c.logger.Debug("catalog query matched nothing", zap.String("query", key))
			return []Card{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query card catalog: %w", err)
		}
		var resp cardInfoResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode card catalog response: %w", err)
		}
		if resp.Data == nil {
			resp.Data = []Card{}
		}

		c.mu.Lock()
		c.cache[key] = resp.Data
		c.mu.Unlock()
		c.logger.Debug("catalog query", zap.String("query", key), zap.Int("results", len(resp.Data)))
		return resp.Data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Card), nil
}
