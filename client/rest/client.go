// Package rest is the HTTP client for the socialhub API. It owns the
// session, injects the bearer token, and transparently refreshes an expired
// access token, replaying the failed request exactly once.
package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"socialhub/wire"
)

// StatusTokenExpired marks an expired access token. Any other 4xx/5xx is a
// terminal APIError.
const StatusTokenExpired = 419

// ErrSessionExpired means the refresh token was rejected too; the caller has
// to log in again.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client

	mu       sync.Mutex
	session  Session
	onChange func(Session)
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do runs one API call. On 419 it refreshes the token pair and replays the
// request once; a second 419 or a failed refresh surfaces ErrSessionExpired.
func (c *Client) do(method, path string, query url.Values, body, out interface{}) error {
	resp, err := c.send(method, path, query, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == StatusTokenExpired {
		drain(resp)
		if err := c.refresh(); err != nil {
			return err
		}
		resp, err = c.send(method, path, query, body)
		if err != nil {
			return err
		}
		if resp.StatusCode == StatusTokenExpired {
			drain(resp)
			return ErrSessionExpired
		}
	}
	return decode(resp, out)
}

func (c *Client) send(method, path string, query url.Values, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

// refresh rotates the token pair using the stored refresh token. Callers
// racing here both end up with whichever pair won; the server accepts either.
func (c *Client) refresh() error {
	sess := c.Session()
	if sess.RefreshToken == "" {
		return ErrSessionExpired
	}

	resp, err := c.send(http.MethodPost, "/auth/refresh-token", nil,
		wire.RefreshRequest{RefreshToken: sess.RefreshToken})
	if err != nil {
		return err
	}
	var auth wire.AuthResponse
	if err := decode(resp, &auth); err != nil {
		return ErrSessionExpired
	}

	sess.AccessToken = auth.AccessToken
	sess.RefreshToken = auth.RefreshToken
	c.SetSession(sess)
	return nil
}

func decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
