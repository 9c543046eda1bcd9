package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrDaemonUnavailable indicates the daemon API could not be reached.
var ErrDaemonUnavailable = errors.New("daemon API unavailable")

// Client talks to the daemon HTTP API.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient builds a client for the daemon API at bind, given as "host:port"
// or a full URL. A blank bind yields a nil client; calls on a nil client
// report ErrDaemonUnavailable.
func NewClient(bind string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Health probes the daemon liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	var payload HealthResponse
	return c.getJSON(ctx, "/api/health", nil, &payload)
}

// Status fetches aggregated daemon runtime information.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var payload DaemonStatus
	err := c.getJSON(ctx, "/api/status", nil, &payload)
	return payload, err
}

// Queue lists queue items, optionally filtered by status strings.
func (c *Client) Queue(ctx context.Context, statuses ...string) ([]QueueItem, error) {
	values := url.Values{}
	for _, status := range statuses {
		if trimmed := strings.TrimSpace(status); trimmed != "" {
			values.Add("status", trimmed)
		}
	}
	var payload QueueListResponse
	if err := c.getJSON(ctx, "/api/queue", values, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// QueueItem fetches a single queue item, returning nil when it does not exist.
func (c *Client) QueueItem(ctx context.Context, id int64) (*QueueItem, error) {
	resp, err := c.do(ctx, http.MethodGet, c.itemPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}
	var payload QueueItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload.Item, nil
}

// SubmitJob enqueues a new job and returns its queue representation.
func (c *Client) SubmitJob(ctx context.Context, req SubmitJobRequest) (QueueItem, error) {
	var payload QueueItemResponse
	if err := c.postJSON(ctx, "/api/jobs", nil, req, &payload); err != nil {
		return QueueItem{}, err
	}
	return payload.Item, nil
}

// RemoveItem deletes a queue item and reports whether it existed.
func (c *Client) RemoveItem(ctx context.Context, id int64) (bool, error) {
	resp, err := c.do(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return false, decodeAPIError(resp)
	}
	var payload QueueRemoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, err
	}
	return payload.Removed, nil
}

// RetryItem resets a failed queue item back to pending.
func (c *Client) RetryItem(ctx context.Context, id int64) (int64, error) {
	var payload QueueActionResponse
	if err := c.postJSON(ctx, c.itemPath(id)+"/retry", nil, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Updated, nil
}

// ClearQueue removes queue items. Scope narrows the removal to "completed" or
// "failed"; blank clears everything.
func (c *Client) ClearQueue(ctx context.Context, scope string) (int64, error) {
	values := url.Values{}
	if trimmed := strings.TrimSpace(scope); trimmed != "" {
		values.Set("scope", trimmed)
	}
	var payload QueueActionResponse
	if err := c.postJSON(ctx, "/api/queue/clear", values, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Updated, nil
}

// Stats fetches queue counts keyed by status.
func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	var payload QueueStatsResponse
	if err := c.getJSON(ctx, "/api/stats", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Counts, nil
}

// Artifact downloads a rendered artifact for a completed job.
func (c *Client) Artifact(ctx context.Context, id int64, format string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, c.itemPath(id)+"/artifacts/"+url.PathEscape(strings.TrimSpace(format)), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

// TestNotification asks the daemon to publish a test notification.
func (c *Client) TestNotification(ctx context.Context) (NotifyTestResponse, error) {
	var payload NotifyTestResponse
	err := c.postJSON(ctx, "/api/notify/test", nil, nil, &payload)
	return payload, err
}

// Logs fetches the trailing lines of the daemon log file.
func (c *Client) Logs(ctx context.Context, lines int) ([]string, error) {
	values := url.Values{}
	if lines > 0 {
		values.Set("lines", strconv.Itoa(lines))
	}
	var payload LogTailResponse
	if err := c.getJSON(ctx, "/api/logs", values, &payload); err != nil {
		return nil, err
	}
	return payload.Lines, nil
}

func (c *Client) itemPath(id int64) string {
	return "/api/queue/" + strconv.FormatInt(id, 10)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	if c == nil {
		return nil, ErrDaemonUnavailable
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return fmt.Errorf("daemon API: %s", payload.Error)
	}
	return fmt.Errorf("daemon API returned status %d", resp.StatusCode)
}

// IsDaemonUnavailable reports whether err means the daemon is not reachable,
// as opposed to the daemon rejecting the request.
func IsDaemonUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrDaemonUnavailable) || errors.As(err, &opErr)
}
