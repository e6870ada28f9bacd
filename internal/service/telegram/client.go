// Package telegram is a minimal Bot API client covering long polling, text
// messages and documents.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	xhttp "MarketClose/pkg/http"
)

// APIError is a Bot API reply with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// Client implements repository.Messenger.
type Client struct {
	baseURL     string
	pollTimeout time.Duration
	http        *xhttp.Client
}

type Option func(*Client)

// WithPollTimeout sets the long-poll timeout passed to getUpdates.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Client) { c.pollTimeout = d }
}

func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(apiURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(apiURL, "/") + "/bot" + token,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(timeout + c.pollTimeout))
	}
	return c
}

// Updates fetches updates with id >= offset.
func (c *Client) Updates(ctx context.Context, offset int64) ([]Update, error) {
	params := map[string][]string{
		"offset":          {strconv.FormatInt(offset, 10)},
		"allowed_updates": {`["message"]`},
	}
	if c.pollTimeout > 0 {
		params["timeout"] = []string{strconv.Itoa(int(c.pollTimeout.Seconds()))}
	}
	var resp apiResponse[[]Update]
	if err := c.call(ctx, "getUpdates", &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		QueryParams: params,
	}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	var resp apiResponse[json.RawMessage]
	return c.call(ctx, "sendMessage", &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		Body:   sendMessageRequest{ChatID: chatID, Text: text},
	}, &resp)
}

func (c *Client) SendDocument(ctx context.Context, chatID, name string, r io.Reader) error {
	var resp apiResponse[json.RawMessage]
	return c.call(ctx, "sendDocument", &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		Body: &xhttp.MultipartBody{
			Fields:    map[string]string{"chat_id": chatID},
			FileField: "document",
			FileName:  name,
			File:      r,
		},
	}, &resp)
}

type okReply interface {
	failure(method string) error
}

func (r *apiResponse[T]) failure(method string) error {
	if r.OK {
		return nil
	}
	return &APIError{Method: method, Code: r.ErrorCode, Description: r.Description}
}

func (c *Client) call(ctx context.Context, method string, opts *xhttp.RequestOptions, resp okReply) error {
	opts.URL = c.baseURL + "/" + method
	if err := c.http.SendAndParse(ctx, opts, resp); err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			var body apiResponse[json.RawMessage]
			if json.Unmarshal([]byte(se.Body), &body) == nil && body.Description != "" {
				return &APIError{Method: method, Code: se.Code, Description: body.Description}
			}
		}
		// url.Error carries the request URL, which embeds the bot token.
		var ue *url.Error
		if errors.As(err, &ue) {
			return fmt.Errorf("telegram %s: %s: %w", method, ue.Op, ue.Err)
		}
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	return resp.failure(method)
}
