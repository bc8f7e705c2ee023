// Package client talks to a running posts server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/debemdeboas/postbox/internal/config"
	"github.com/debemdeboas/postbox/internal/model"
)

// ErrNotFound mirrors a 404 from the server.
var ErrNotFound = errors.New("not found")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path, body string, out any) error {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set(config.HCType, config.CTypeText)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &msg) == nil && msg.Message != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, msg.Message)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

func itemPath(id model.PostID) string {
	return config.PostsUrlPath + "/" + url.PathEscape(string(id))
}

func (c *Client) List(ctx context.Context) ([]model.Post, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodGet, config.PostsUrlPath, "", &doc); err != nil {
		return nil, err
	}
	return doc.Posts, nil
}

func (c *Client) Get(ctx context.Context, id model.PostID) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodGet, itemPath(id), "", &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) Create(ctx context.Context, body string) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodPost, config.PostsUrlPath, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) Update(ctx context.Context, id model.PostID, body string) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodPatch, itemPath(id), body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) Delete(ctx context.Context, id model.PostID) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodDelete, itemPath(id), "", &post); err != nil {
		return nil, err
	}
	return &post, nil
}
