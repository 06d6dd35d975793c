package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"explorewithme/internal/domain"
)

// timeLayout is the timestamp format the stats server speaks.
const timeLayout = "2006-01-02 15:04:05"

type statsHTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient returns a StatsClient that calls the stats server at baseURL.
func NewHTTPClient(baseURL string, client *http.Client) domain.StatsClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &statsHTTPClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type hitRequest struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

func (c *statsHTTPClient) Hit(ctx context.Context, app, uri, ip string, timestamp time.Time) error {
	body, err := json.Marshal(hitRequest{
		App:       app,
		URI:       uri,
		IP:        ip,
		Timestamp: timestamp.UTC().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to encode hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach stats server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats server returned status: %d", resp.StatusCode)
	}
	return nil
}

func (c *statsHTTPClient) GetViews(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	params := url.Values{}
	params.Set("start", start.UTC().Format(timeLayout))
	params.Set("end", end.UTC().Format(timeLayout))
	for _, uri := range uris {
		params.Add("uris", uri)
	}
	params.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach stats server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats server returned status: %d", resp.StatusCode)
	}

	var stats []viewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	views := make(map[string]int64, len(stats))
	for _, s := range stats {
		views[s.URI] = s.Hits
	}
	return views, nil
}
