// Package lanyard is a client for the Lanyard presence API (https://github.com/Phineas/lanyard)
package lanyard

import (
	"context"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

const BaseURL = "https://api.lanyard.rest/v1"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultClient is used by the package level FetchUser
var DefaultClient = &Client{}

// Client fetches presences from Lanyard. The zero value is ready to use.
//
// A Client holds no per-request state, so it may be shared between goroutines
type Client struct {
	// HTTP client to use, http.DefaultClient if nil
	HTTP *http.Client
	// Base URL of the API, BaseURL if empty
	BaseURL string
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}

	return c.HTTP
}

// UserURL returns the URL the presence of id is fetched from
func (c *Client) UserURL(id Snowflake) string {
	base := c.BaseURL

	if base == "" {
		base = BaseURL
	}

	return strings.TrimSuffix(base, "/") + "/users/" + string(id)
}

// FetchUser fetches the presence of a user.
//
// Errors from the HTTP client and from decoding the body are returned as-is.
// Any other failure is returned as a *APIError
func (c *Client) FetchUser(ctx context.Context, id Snowflake) (*Presence, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.UserURL(id), nil)

	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	bytes, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, err
	}

	var body Response

	// Trailing data after the envelope is a decode error
	err = json.Unmarshal(bytes, &body)

	if err != nil {
		return nil, err
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299

	if IsSuccess(ok, &body) {
		return body.Data, nil
	}

	apiErr := &APIError{
		Request:  req,
		Response: resp,
	}

	if body.Error != nil {
		apiErr.Body = *body.Error
	}

	return nil, apiErr
}

// FetchUser fetches the presence of a user using DefaultClient
func FetchUser(ctx context.Context, id Snowflake) (*Presence, error) {
	return DefaultClient.FetchUser(ctx, id)
}
