// Package httpclient provides basic http functions for consuming upstream JSON services
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client issues JSON GET requests against one upstream base url
type Client struct {
	baseUrl    string
	httpClient *http.Client
}

// MakeClient creates a Client for baseUrl with a request timeout
func MakeClient(baseUrl string, timeout time.Duration) *Client {
	return &Client{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetJSON performs a GET request against path with query parameters and
// un-marshals the JSON response body into target.
// Any non 2xx response status is returned as an error.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, target interface{}) error {
	requestUrl := c.baseUrl + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		requestUrl = requestUrl + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return fmt.Errorf("unable to build request for %s, error: %w", requestUrl, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed, error: %w", requestUrl, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request to %s returned status %d", requestUrl, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body from %s, error: %w", requestUrl, err)
	}

	err = json.Unmarshal(body, target)
	if err != nil {
		return fmt.Errorf("unable to unmarshal response from %s, error: %w", requestUrl, err)
	}
	return nil
}
