package contact

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPChannel posts messages as a form to an endpoint.
type HTTPChannel struct {
	endpoint string
	client   *http.Client
	logger   *log.Logger
}

// NewHTTPChannel creates a channel for endpoint. A nil client gets a default
// one with the given timeout; a nil logger uses the standard logger.
func NewHTTPChannel(endpoint string, client *http.Client, timeout time.Duration, logger *log.Logger) *HTTPChannel {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPChannel{endpoint: endpoint, client: client, logger: logger}
}

// Submit returns OK for a 2xx response, Rejected for any other status and
// NetworkError when no response was received.
func (c *HTTPChannel) Submit(ctx context.Context, f Fields) Outcome {
	form := url.Values{}
	form.Set("name", f.Name)
	form.Set("email", f.Email)
	form.Set("message", f.Message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Printf("contact: building request: %v", err)
		return NetworkError
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Printf("contact: submit: %v", err)
		return NetworkError
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return OK
	}
	c.logger.Printf("contact: submit: endpoint returned %s", resp.Status)
	return Rejected
}
