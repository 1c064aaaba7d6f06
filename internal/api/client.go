// Package api talks to the remote /todos collection.
package api

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

const (
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	DefaultTimeout = 10 * time.Second

	todosPath = "/todos"
)

// Remote is the subset of the collection the list controller depends on.
type Remote interface {
	List(ctx context.Context, f model.Filter) ([]model.Task, error)
	Create(ctx context.Context, title string, completed bool) (model.Task, error)
	Update(ctx context.Context, id int, title string, completed bool) (model.Task, error)
	Delete(ctx context.Context, id int) error
}

// Options configure a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Token      string
	UserAgent  string
	Logger     *log.Logger
	HTTPClient *http.Client
}

// Client is an HTTP implementation of Remote.
type Client struct {
	base      *url.URL
	token     string
	userAgent string
	http      *http.Client
	log       *log.Logger
}

var _ Remote = (*Client)(nil)

// taskBody is the request payload for POST and PUT.
type taskBody struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func New(opt Options) (*Client, error) {
	raw := strings.TrimSpace(opt.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", raw)
	}

	hc := opt.HTTPClient
	if hc == nil {
		timeout := opt.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ua := opt.UserAgent
	if ua == "" {
		ua = "tasktracker"
	}
	return &Client{
		base:      base,
		token:     opt.Token,
		userAgent: ua,
		http:      hc,
		log:       logger,
	}, nil
}

// List fetches the collection, narrowed by f when it is not FilterAll.
func (c *Client) List(ctx context.Context, f model.Filter) ([]model.Task, error) {
	q := url.Values{}
	if v := f.Query(); v != "" {
		q.Set("completed", v)
	}
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, todosPath, q, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Create posts a new task and returns the server's copy, including its id.
func (c *Client) Create(ctx context.Context, title string, completed bool) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPost, todosPath, nil, taskBody{Title: title, Completed: completed}, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id int, title string, completed bool) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPut, taskPath(id), nil, taskBody{Title: title, Completed: completed}, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

func taskPath(id int) string {
	return todosPath + "/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "request_id", reqID, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		"method", method,
		"path", path,
		"query", u.RawQuery,
		"status", resp.StatusCode,
		"request_id", reqID,
		"took", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
