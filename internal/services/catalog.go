package services

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

	"kinobot/internal/models"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 15 * time.Second
	maxRetries       = 3
	retryDelay       = 500 * time.Millisecond
	pageLimit        = 20
	maxResponseSize  = 5 * 1024 * 1024
	movieCachePrefix = "kp:movie:"
	pageCachePrefix  = "kp:page:"
	findCachePrefix  = "kp:search:"
	movieCacheTTL    = 24 * time.Hour
	pageCacheTTL     = 30 * time.Minute
	findCacheTTL     = 4 * time.Hour
)

// ErrNotFound reports that the catalog has no entry for the requested id.
var ErrNotFound = errors.New("catalog entry not found")

// TopMinRating is the rating floor the "top" browse views apply.
const TopMinRating = 7.5

// CatalogClient talks to the kinopoisk.dev API. Responses are cached in
// Redis when a client is configured; requests are rate limited and retried.
type CatalogClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
	limiter    *rate.Limiter
	redis      *redis.Client
	retries    uint
	retryDelay time.Duration
}

type CatalogConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RateLimit  rate.Limit
	MaxRetries uint
	RetryDelay time.Duration
	Logger     *logrus.Logger
	Redis      *redis.Client
}

// PageRequest describes one catalog page fetch. Genre carries the upstream
// genres.name value, not the picker slug.
type PageRequest struct {
	Kind      models.MediaKind
	Page      int
	Genre     string
	MinRating float64
	Year      int
}

func NewCatalogClient(config *CatalogConfig) *CatalogClient {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Every(200 * time.Millisecond)
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = maxRetries
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = retryDelay
	}

	return &CatalogClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:     config.Logger,
		limiter:    rate.NewLimiter(config.RateLimit, 1),
		redis:      config.Redis,
		retries:    config.MaxRetries,
		retryDelay: config.RetryDelay,
	}
}

// MovieByID fetches one catalog entry. Returns ErrNotFound when the catalog
// does not know the id.
func (c *CatalogClient) MovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	cacheKey := movieCachePrefix + strconv.FormatInt(id, 10)
	var movie models.Movie
	if c.cacheGet(ctx, cacheKey, &movie) {
		return &movie, nil
	}

	body, err := c.makeRequest(ctx, fmt.Sprintf("%s/movie/%d", c.baseURL, id))
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, &movie); err != nil {
		return nil, fmt.Errorf("failed to decode catalog entry: %w", err)
	}
	if movie.Id == 0 {
		return nil, ErrNotFound
	}

	c.cacheSet(ctx, cacheKey, &movie, movieCacheTTL)
	return &movie, nil
}

// Page fetches one page of the catalog sorted by rating, optionally filtered
// by genre, minimum rating and year. An empty page is not an error.
func (c *CatalogClient) Page(ctx context.Context, req PageRequest) ([]models.Movie, error) {
	if req.Page < 1 {
		req.Page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("sortField", "rating.kp")
	params.Set("sortType", "-1")
	if req.Genre != "" {
		params.Set("genres.name", req.Genre)
	}
	if req.MinRating > 0 {
		params.Set("rating.kp", fmt.Sprintf("%.1f-10", req.MinRating))
	}
	if req.Year > 0 {
		params.Set("year", strconv.Itoa(req.Year))
	}

	fetchURL := fmt.Sprintf("%s/%s?%s", c.baseURL, req.Kind.UpstreamType(), params.Encode())

	cacheKey := pageCachePrefix + params.Encode() + ":" + string(req.Kind)
	var page models.KinopoiskPage
	if c.cacheGet(ctx, cacheKey, &page) {
		return page.Docs, nil
	}

	body, err := c.makeRequest(ctx, fetchURL)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode catalog page: %w", err)
	}

	c.cacheSet(ctx, cacheKey, &page, pageCacheTTL)
	return page.Docs, nil
}

// Search runs a free-text title search. The caller is responsible for
// rejecting queries that are too short.
func (c *CatalogClient) Search(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("query", query)

	cacheKey := findCachePrefix + strconv.Itoa(limit) + ":" + query
	var page models.KinopoiskPage
	if c.cacheGet(ctx, cacheKey, &page) {
		return page.Docs, nil
	}

	body, err := c.makeRequest(ctx, fmt.Sprintf("%s/movie/search?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	c.cacheSet(ctx, cacheKey, &page, findCacheTTL)
	return page.Docs, nil
}

func (c *CatalogClient) makeRequest(ctx context.Context, fetchURL string) ([]byte, error) {
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, retry.Unrecoverable(err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
			if err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("X-API-KEY", c.apiKey)
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, fmt.Errorf("failed to make HTTP request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return nil, retry.Unrecoverable(ErrNotFound)
			}
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("API returned status code %d", resp.StatusCode)
			}

			data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
			if err != nil {
				return nil, fmt.Errorf("failed to read response body: %w", err)
			}
			if len(data) > maxResponseSize {
				return nil, retry.Unrecoverable(fmt.Errorf("response too large: exceeded %d bytes", maxResponseSize))
			}
			return data, nil
		},
		retry.Attempts(c.retries),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"url":     fetchURL,
				"error":   err.Error(),
			}).Warn("API request failed, retrying...")
		}),
	)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"url":           fetchURL,
		"response_size": len(body),
	}).Debug("API request successful")

	return body, nil
}

func (c *CatalogClient) cacheGet(ctx context.Context, key string, dest any) bool {
	if c.redis == nil {
		return false
	}

	cached, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("Failed to read from Redis")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		c.logger.WithError(err).Warn("Failed to unmarshal cached response")
		return false
	}
	return true
}

func (c *CatalogClient) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal response for caching")
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Failed to write response to cache")
	}
}
