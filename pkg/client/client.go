// Package client is the Go client for the storeadmin REST API. The
// console engine drives all writes through it; scripts and tests can
// use it directly.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ConflictError reports a 409 from the server. For deletes this carries
// the dependency guard message, which the console surfaces verbatim.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Message)
}

// RequestError reports any other non-2xx response.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

// Client talks to one storeadmin server.
type Client struct {
	baseURL string
	timeout time.Duration
	debug   bool
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

func (c *Client) resourceURL(storeID int64, resource string) string {
	if resource == "stores" {
		return fmt.Sprintf("%s/api/stores", c.baseURL)
	}
	return fmt.Sprintf("%s/api/%d/%s", c.baseURL, storeID, resource)
}

func (c *Client) entityURL(storeID int64, resource string, id int64) string {
	return fmt.Sprintf("%s/%d", c.resourceURL(storeID, resource), id)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decode maps the response to either the target or a typed error.
func decode(status int, body []byte, target any) error {
	if status >= 200 && status < 300 {
		if target == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, target); err != nil {
			return errors.Wrap(err, "decode response")
		}
		return nil
	}
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	if status == http.StatusConflict {
		return &ConflictError{Code: ae.Code, Message: ae.Message}
	}
	return &RequestError{StatusCode: status, Code: ae.Code, Message: ae.Message}
}

func (c *Client) do(ctx context.Context, df *gout.DataFlow, target any) error {
	var (
		status int
		body   []byte
	)
	err := df.WithContext(ctx).
		SetTimeout(c.timeout).
		Debug(c.debug).
		Code(&status).
		BindBody(&body).
		Do()
	if err != nil {
		return errors.Wrap(err, "storeadmin api request")
	}
	return decode(status, body, target)
}

// Create posts a new entity and returns the created record.
func (c *Client) Create(ctx context.Context, storeID int64, resource string, payload map[string]any) (map[string]any, error) {
	var created map[string]any
	err := c.do(ctx, gout.POST(c.resourceURL(storeID, resource)).SetJSON(payload), &created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update patches an existing entity.
func (c *Client) Update(ctx context.Context, storeID int64, resource string, id int64, payload map[string]any) error {
	return c.do(ctx, gout.PATCH(c.entityURL(storeID, resource, id)).SetJSON(payload), nil)
}

// Remove deletes an entity. A dependency conflict comes back as
// *ConflictError carrying the server's guard message.
func (c *Client) Remove(ctx context.Context, storeID int64, resource string, id int64) error {
	return c.do(ctx, gout.DELETE(c.entityURL(storeID, resource, id)), nil)
}

// Get fetches one entity into target.
func (c *Client) Get(ctx context.Context, storeID int64, resource string, id int64, target any) error {
	return c.do(ctx, gout.GET(c.entityURL(storeID, resource, id)), target)
}

// Page is one page of a listing.
type Page struct {
	Items    []map[string]any `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ListQuery filters a listing. Zero values are omitted.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
}

// List fetches one page of a resource listing.
func (c *Client) List(ctx context.Context, storeID int64, resource string, q ListQuery) (*Page, error) {
	query := gout.H{}
	if q.Page > 0 {
		query["page"] = q.Page
	}
	if q.PageSize > 0 {
		query["page_size"] = q.PageSize
	}
	if q.Search != "" {
		query["q"] = q.Search
	}
	for k, v := range q.Filters {
		query[k] = v
	}
	var page Page
	err := c.do(ctx, gout.GET(c.resourceURL(storeID, resource)).SetQuery(query), &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
