package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/books/v1"
	DefaultTimeout = 10 * time.Second

	// MaxResults is the largest page the volumes endpoint serves.
	MaxResults = 40

	maxResponseBytes = 1 << 20
	userAgent        = "bookbot/search"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

var _ ports.BookSearcher = (*Client)(nil)

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger.Named("googlebooks"),
	}
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.BookRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidLimit, limit)
	}
	if limit > MaxResults {
		limit = MaxResults
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := c.fetchVolumes(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if len(payload.Items) == 0 {
		c.logger.Debug("no result", zap.String("query", query), zap.Int("total_items", payload.TotalItems))
		return []domain.BookRecord{}, nil
	}

	books := make([]domain.BookRecord, 0, min(len(payload.Items), limit))
	for _, item := range payload.Items {
		if len(books) == limit {
			break
		}
		books = append(books, toBookRecord(item.VolumeInfo))
	}

	return books, nil
}

func (c *Client) fetchVolumes(ctx context.Context, query string, limit int) (volumesResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + "/volumes?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return volumesResponse{}, fmt.Errorf("%w: create request: %v", domain.ErrProviderUnavailable, err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("search request failed", zap.String("query", query), zap.Error(err))
		return volumesResponse{}, fmt.Errorf("%w: perform request: %w", domain.ErrProviderUnavailable, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return volumesResponse{}, fmt.Errorf("%w: read response: %w", domain.ErrProviderUnavailable, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		c.logger.Warn("search provider returned non-success status",
			zap.String("query", query),
			zap.Int("status", response.StatusCode),
		)
		return volumesResponse{}, fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, response.StatusCode, domain.Truncate(strings.TrimSpace(string(body)), 200))
	}

	var payload volumesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("search provider returned undecodable payload", zap.String("query", query), zap.Error(err))
		return volumesResponse{}, fmt.Errorf("%w: decode volumes: %w", domain.ErrMalformedResponse, err)
	}

	return payload, nil
}

func toBookRecord(info volumeInfo) domain.BookRecord {
	title := strings.TrimSpace(info.Title)
	if subtitle := strings.TrimSpace(info.Subtitle); title != "" && subtitle != "" {
		title = title + ": " + subtitle
	}

	thumbnail := info.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = info.ImageLinks.SmallThumbnail
	}

	link := info.InfoLink
	if link == "" {
		link = info.CanonicalVolumeLink
	}

	return domain.BookRecord{
		Title:        title,
		Authors:      info.Authors,
		Description:  info.Description,
		ThumbnailURL: secureURL(thumbnail),
		DetailLink:   secureURL(link),
	}.Normalize()
}

func secureURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}
