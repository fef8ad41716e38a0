package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Post performs a bodyless POST request; the control endpoints carry their
// meaning in the path.
func (c *HTTPClient) Post(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// pollStatus fetches one status snapshot from the daemon.
func pollStatus(ctx context.Context, client *HTTPClient, baseURL string) (StatusSample, error) {
	var sample StatusSample

	resp, err := client.Get(ctx, baseURL+"/status")
	if err != nil {
		return sample, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return sample, err
	}
	if resp.StatusCode != StatusOK {
		return sample, fmt.Errorf("status poll failed with status: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, &sample); err != nil {
		return sample, fmt.Errorf("failed to parse status response: %w", err)
	}
	sample.ObservedAt = time.Now()
	return sample, nil
}

// fetchEpisodes lists recent alert episodes from the daemon.
func fetchEpisodes(ctx context.Context, client *HTTPClient, baseURL string, limit int) ([]EpisodeRecord, error) {
	resp, err := client.Get(ctx, baseURL+"/episodes?limit="+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("episode fetch failed with status: %d", resp.StatusCode)
	}

	var episodes []EpisodeRecord
	if err := json.Unmarshal(body, &episodes); err != nil {
		return nil, fmt.Errorf("failed to parse episodes response: %w", err)
	}
	return episodes, nil
}

// postCommand hits a control endpoint and checks the acknowledgment.
func postCommand(ctx context.Context, client *HTTPClient, baseURL, path string) error {
	resp, err := client.Post(ctx, baseURL+path)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusAccepted {
		return fmt.Errorf("command %s rejected with status: %d", path, resp.StatusCode)
	}

	var ack AckResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("failed to parse ack response: %w", err)
	}
	if ack.Status != "accepted" {
		return fmt.Errorf("command %s not accepted: %s", path, ack.Status)
	}
	return nil
}
