// Package network backs the http_* and ws_* natives.
package network

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// Response is the script-facing result of an HTTP request.
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       string
}

// Client wraps an http.Client with the defaults Nova scripts expect.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: 30 * time.Second}}
}

func (c *Client) Get(url string) (*Response, error) {
	return c.Do("GET", url, nil, nil)
}

func (c *Client) Post(url string, body []byte, headers map[string]string) (*Response, error) {
	return c.Do("POST", url, body, headers)
}

func (c *Client) Put(url string, body []byte, headers map[string]string) (*Response, error) {
	return c.Do("PUT", url, body, headers)
}

func (c *Client) Delete(url string) (*Response, error) {
	return c.Do("DELETE", url, nil, nil)
}

// Do performs a request. The Content-Type defaults to JSON when the
// body parses as JSON, text otherwise.
func (c *Client) Do(method, url string, body []byte, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "bad request")
	}

	req.Header.Set("User-Agent", "Nova/1.0")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		if json.Valid(body) {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "text/plain")
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reading response body")
	}

	respHeaders := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		respHeaders[key] = resp.Header.Get(key)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    respHeaders,
		Body:       string(respBody),
	}, nil
}
