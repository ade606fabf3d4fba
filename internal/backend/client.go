package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vitrinaapp/vitrina-store/internal/config"
	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
	"github.com/vitrinaapp/vitrina-store/internal/ratelimit"
)

const (
	defaultRPS     = 5.0
	defaultBurst   = 10
	defaultTimeout = 15 * time.Second

	// Key used for rate limiting calls made without a session.
	anonymousKey = "anonymous"

	maxErrorBody = 4 << 10
)

// Client is a rate-limited JSON-over-HTTP Backend with a websocket live feed.
type Client struct {
	http    *http.Client
	dialer  *websocket.Dialer
	baseURL *url.URL
	feedURL string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

var _ Backend = (*Client)(nil)

// NewClient creates a client for the backend described by cfg.
func NewClient(cfg config.BackendConfig, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http or https, got %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps, burst := cfg.RPS, cfg.Burst
	if rps <= 0 {
		rps = defaultRPS
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
		baseURL: base,
		feedURL: cfg.FeedURL,
		limiter: ratelimit.New(rps, burst),
		logger:  logger,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// MarkNotificationRead implements Backend.
func (c *Client) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return c.do(ctx, userID, http.MethodPost, userPath(userID, "notifications", notificationID, "read"), nil, nil, nil)
}

// DeleteNotification implements Backend.
func (c *Client) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return c.do(ctx, userID, http.MethodDelete, userPath(userID, "notifications", notificationID), nil, nil, nil)
}

// GetUserCollections implements Backend.
func (c *Client) GetUserCollections(ctx context.Context, userID string) ([]domain.Collection, error) {
	var out []domain.Collection
	if err := c.do(ctx, userID, http.MethodGet, userPath(userID, "collections"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddToCollection implements Backend.
func (c *Client) AddToCollection(ctx context.Context, userID, collectionID string, item domain.SaveItem) error {
	return c.do(ctx, userID, http.MethodPost, userPath(userID, "collections", collectionID, "items"), nil, item, nil)
}

// CreateCollection implements Backend.
func (c *Client) CreateCollection(ctx context.Context, userID string, draft domain.CollectionDraft) (domain.Collection, error) {
	var out domain.Collection
	if err := c.do(ctx, userID, http.MethodPost, userPath(userID, "collections"), nil, draft, &out); err != nil {
		return domain.Collection{}, err
	}
	return out, nil
}

// DeleteCollection implements Backend.
func (c *Client) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	return c.do(ctx, userID, http.MethodDelete, userPath(userID, "collections", collectionID), nil, nil, nil)
}

// GetUserProfile implements Backend.
func (c *Client) GetUserProfile(ctx context.Context, entityID string) (*domain.AuthorProfile, error) {
	var out domain.AuthorProfile
	err := c.do(ctx, "", http.MethodGet, "/profiles/"+entityID, nil, nil, &out)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchContent implements Backend.
func (c *Client) FetchContent(ctx context.Context, q domain.FeedQuery) (domain.Page, error) {
	query := url.Values{}
	query.Set("category", string(q.Category))
	query.Set("sort", string(q.Sort))
	query.Set("mode", string(q.Mode))
	if q.Cursor != "" {
		query.Set("cursor", q.Cursor)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var page domain.Page
	if err := c.do(ctx, "", http.MethodGet, "/content", query, nil, &page); err != nil {
		return domain.Page{}, err
	}
	return page, nil
}

// AddToCart implements Backend.
func (c *Client) AddToCart(ctx context.Context, userID string, item domain.CartItem) error {
	return c.do(ctx, userID, http.MethodPost, userPath(userID, "cart"), nil, item, nil)
}

// SetLiked implements Backend.
func (c *Client) SetLiked(ctx context.Context, userID, itemID string, liked bool) error {
	method := http.MethodPut
	if !liked {
		method = http.MethodDelete
	}
	return c.do(ctx, userID, method, userPath(userID, "likes", itemID), nil, nil, nil)
}

// FollowUser implements Backend.
func (c *Client) FollowUser(ctx context.Context, userID, targetID string) error {
	return c.do(ctx, userID, http.MethodPost, userPath(userID, "following", targetID), nil, nil, nil)
}

// do executes one JSON request with rate limiting. path is unescaped;
// body and out may be nil.
func (c *Client) do(ctx context.Context, userID, method, path string, query url.Values, body, out any) error {
	key := userID
	if key == "" {
		key = anonymousKey
	}
	if err := c.limiter.Wait(ctx, key); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Vitrina/1.0")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"request_id", requestID,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return domainerrors.BackendRejected(err, method+" "+path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domainerrors.BackendRejected(err, "decode "+method+" "+path)
		}
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return statusError(resp.StatusCode, method+" "+path, strings.TrimSpace(string(detail)))
}

// statusError maps a non-2xx response onto a coded error.
func statusError(status int, op, detail string) error {
	msg := fmt.Sprintf("%s: status %d", op, status)
	if detail != "" {
		msg += ": " + detail
	}

	switch {
	case status == http.StatusNotFound:
		return domainerrors.NotFound(msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domainerrors.NotAuthenticated(msg)
	case status == http.StatusConflict:
		return domainerrors.Conflict(msg)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domainerrors.Validation(msg)
	default:
		return domainerrors.BackendRejected(nil, msg)
	}
}

func userPath(userID string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/users/")
	b.WriteString(userID)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}
