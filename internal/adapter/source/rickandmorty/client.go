// Package rickandmorty implements domain.CharacterSource against the public
// Rick and Morty REST API.
package rickandmorty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmcdole/citadel/internal/domain"
)

const (
	DefaultBaseURL         = "https://rickandmortyapi.com/api"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultResourceTimeout = 60 * time.Second
	userAgent              = "Citadel/1.0"
)

// Config controls the HTTP client
type Config struct {
	BaseURL         string
	RequestTimeout  time.Duration // Per attempt, including rate-limit wait
	ResourceTimeout time.Duration // Hard ceiling for the whole exchange
	RateLimit       float64       // Requests per second; 0 disables limiting
	Burst           int
}

// Client implements domain.CharacterSource
type Client struct {
	baseURL        string
	requestTimeout time.Duration
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *slog.Logger
}

// NewClient creates a new API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ResourceTimeout <= 0 {
		cfg.ResourceTimeout = DefaultResourceTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		requestTimeout: cfg.RequestTimeout,
		httpClient: &http.Client{
			Timeout: cfg.ResourceTimeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// FetchPage returns one page of characters. Pages are 1-based.
func (c *Client) FetchPage(ctx context.Context, page int, filter domain.CharacterFilter) (domain.CharacterPage, error) {
	if page < 1 {
		return domain.CharacterPage{}, &domain.TransportError{
			Kind: domain.TransportInvalidRequest,
			Err:  fmt.Errorf("page %d out of range", page),
		}
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if filter.Name != "" {
		query.Set("name", filter.Name)
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Species != "" {
		query.Set("species", filter.Species)
	}

	body, err := c.doRequest(ctx, "/character", query)
	if err != nil {
		return domain.CharacterPage{}, err
	}

	var resp CharacterPageDTO
	if err := c.decode(body, &resp); err != nil {
		return domain.CharacterPage{}, err
	}
	return MapCharacterPage(resp), nil
}

// FetchCharacter returns a single character
func (c *Client) FetchCharacter(ctx context.Context, id int) (domain.Character, error) {
	body, err := c.doRequest(ctx, fmt.Sprintf("/character/%d", id), nil)
	if err != nil {
		return domain.Character{}, err
	}

	var resp CharacterDTO
	if err := c.decode(body, &resp); err != nil {
		return domain.Character{}, err
	}
	return MapCharacter(resp), nil
}

// FetchEpisodes returns the episodes for ids in a single request.
// The API answers a single id with an object and several ids with an array.
func (c *Client) FetchEpisodes(ctx context.Context, ids []int) ([]domain.Episode, error) {
	if len(ids) == 0 {
		return nil, &domain.TransportError{Kind: domain.TransportInvalidRequest, Err: errors.New("no episode ids")}
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	body, err := c.doRequest(ctx, "/episode/"+strings.Join(parts, ","), nil)
	if err != nil {
		return nil, err
	}

	var dtos []EpisodeDTO
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var one EpisodeDTO
		if err := c.decode(trimmed, &one); err != nil {
			return nil, err
		}
		dtos = []EpisodeDTO{one}
	} else if err := c.decode(body, &dtos); err != nil {
		return nil, err
	}
	return MapEpisodes(dtos), nil
}

// doRequest performs a GET and classifies every failure as *domain.TransportError
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.TransportError{Kind: domain.TransportUnreachable, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &domain.TransportError{Kind: domain.TransportInvalidRequest, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("api request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "error", err, "url", reqURL)
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read response", "error", err, "url", reqURL)
		return nil, classifyTransport(err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.TransportError{Kind: domain.TransportNotFound, StatusCode: resp.StatusCode, Err: apiError(body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error("api request error", "status", resp.StatusCode, "url", reqURL)
		return nil, &domain.TransportError{Kind: domain.TransportServer, StatusCode: resp.StatusCode, Err: apiError(body)}
	}
	return body, nil
}

func (c *Client) decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return &domain.TransportError{Kind: domain.TransportDecode, Err: err}
	}
	return nil
}

// classifyTransport maps client-side failures. Everything except a
// malformed URL is treated as the host being unreachable.
func classifyTransport(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && !urlErr.Timeout() &&
		strings.Contains(urlErr.Err.Error(), "unsupported protocol scheme") {
		return &domain.TransportError{Kind: domain.TransportInvalidRequest, Err: err}
	}
	return &domain.TransportError{Kind: domain.TransportUnreachable, Err: err}
}

// apiError extracts the "error" field of an error body, if any
func apiError(body []byte) error {
	var e ErrorDTO
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return errors.New(e.Error)
	}
	return nil
}
