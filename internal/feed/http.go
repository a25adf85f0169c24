package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"feedview/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const DefaultTimeout = 15 * time.Second

// HTTPClient talks to the feed backend's REST API.
type HTTPClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	limiter *rate.Limiter
	log     zerolog.Logger
}

type HTTPOptions struct {
	Token         string
	Timeout       time.Duration
	RatePerSecond float64
	Logger        zerolog.Logger
}

func NewHTTPClient(baseURL string, opts HTTPOptions) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &HTTPClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      opts.Token,
		HTTPClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		log:        opts.Logger.With().Str("component", "feed.http").Logger(),
	}
}

var _ Repository = (*HTTPClient)(nil)

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *model.PageMeta `json:"meta,omitempty"`
}

func (c *HTTPClient) FetchComments(ctx context.Context, postID string) ([]model.CommentRecord, error) {
	var out []model.CommentRecord
	if _, err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(postID), nil, &out); err != nil {
		return nil, fmt.Errorf("fetch comments for %s: %w", postID, err)
	}
	return out, nil
}

func (c *HTTPClient) CreateComment(ctx context.Context, nc model.NewComment) error {
	if _, err := c.do(ctx, http.MethodPost, "/comments", nc, nil); err != nil {
		return fmt.Errorf("create comment on %s: %w", nc.Post, err)
	}
	return nil
}

func (c *HTTPClient) CreateReply(ctx context.Context, r model.NewReply) error {
	path := "/comments/" + url.PathEscape(r.CommentID) + "/reply"
	if _, err := c.do(ctx, http.MethodPost, path, r.Data, nil); err != nil {
		return fmt.Errorf("reply to %s: %w", r.CommentID, err)
	}
	return nil
}

func (c *HTTPClient) ListPosts(ctx context.Context, list PostList, page, limit int) (model.Page, error) {
	if !list.Valid() {
		return model.Page{}, fmt.Errorf("unknown post list: %q", list)
	}
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/posts/" + string(list)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var posts []model.Post
	env, err := c.do(ctx, http.MethodGet, path, nil, &posts)
	if err != nil {
		return model.Page{}, fmt.Errorf("list %s: %w", list, err)
	}
	p := model.Page{Posts: posts}
	if env.Meta != nil {
		p.Meta = *env.Meta
	} else {
		p.Meta = model.PageMeta{Page: page, Limit: limit}
	}
	return p, nil
}

func (c *HTTPClient) Post(ctx context.Context, id string) (model.Post, error) {
	var p model.Post
	if _, err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, &p); err != nil {
		return model.Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return p, nil
}

// do sends one request and decodes the envelope's data into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) (envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return envelope{}, err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return envelope{}, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return envelope{}, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	log := c.log.With().Str("request_id", reqID).Str("method", method).Str("path", path).Logger()
	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("request failed")
		return envelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return envelope{}, err
	}
	log.Debug().Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("response")

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message, RequestID: reqID}
		if decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		log.Warn().Int("status", resp.StatusCode).Str("message", apiErr.Message).Msg("api error")
		return env, apiErr
	}
	if decodeErr != nil {
		return env, fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		return env, &APIError{Status: resp.StatusCode, Message: env.Message, RequestID: reqID}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env, fmt.Errorf("decode data: %w", err)
		}
	}
	return env, nil
}
