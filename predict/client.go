// Package predict talks to the remote heart-disease classifier.
package predict

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/cardioagent/types"
)

const DefaultTimeout = 10 * time.Second

// Error describes a failed prediction call. Its text names the endpoint and
// is shown to the user.
type Error struct {
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Falha ao chamar a API em %s: %v", e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) URL() string {
	return c.url
}

// Predict posts payload and decodes the classifier response. Every failure
// is returned as *Error.
func (c *Client) Predict(ctx context.Context, payload types.Payload) (*types.Prediction, error) {
	pred, err := c.call(ctx, payload)
	if err != nil {
		return nil, &Error{Endpoint: c.url, Err: err}
	}
	return pred, nil
}

func (c *Client) call(ctx context.Context, payload types.Payload) (*types.Prediction, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), string(bytes.TrimSpace(respBody)))
	}

	var pred types.Prediction
	if err := sonic.Unmarshal(respBody, &pred); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if pred.Label == "" && pred.Prediction == nil {
		return nil, fmt.Errorf("decode response: missing label and prediction")
	}
	return &pred, nil
}
