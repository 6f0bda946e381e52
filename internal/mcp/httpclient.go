package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/models"
	"github.com/claude/liftcoach/internal/storage"
)

// HTTPClient implements DataSource by calling the LiftCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// identifies the caller, so the userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, what string, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return nil
}

func exercisePath(exerciseID uuid.UUID, suffix string) string {
	return "/api/v1/exercises/" + exerciseID.String() + "/" + suffix
}

func (c *HTTPClient) QuerySetLogs(ctx context.Context, _ uuid.UUID, start, end time.Time, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))
	if exerciseID != uuid.Nil {
		params.Set("exercise", exerciseID.String())
	}

	var sets []models.SetLogRow
	if err := c.getJSON(ctx, "/api/v1/sets", params, "sets", &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *HTTPClient) LatestSession(ctx context.Context, _, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	var sets []models.SetLogRow
	if err := c.getJSON(ctx, exercisePath(exerciseID, "latest-session"), nil, "latest session", &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *HTTPClient) GetOneRepMax(ctx context.Context, _, exerciseID uuid.UUID) (*models.OneRepMaxRow, error) {
	var m models.OneRepMaxRow
	if err := c.getJSON(ctx, exercisePath(exerciseID, "one-rep-max"), nil, "one-rep max", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *HTTPClient) LatestPrescription(ctx context.Context, _, exerciseID uuid.UUID) (*models.PrescriptionRow, error) {
	var p models.PrescriptionRow
	if err := c.getJSON(ctx, exercisePath(exerciseID, "prescription"), nil, "prescription", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ uuid.UUID) (*storage.DataStats, error) {
	var stats storage.DataStats
	if err := c.getJSON(ctx, "/api/v1/stats", nil, "stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
