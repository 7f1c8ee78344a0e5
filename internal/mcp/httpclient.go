package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// HTTPClient implements DataSource by calling the LiftLog REST API. Used
// for remote MCP mode where the binary runs locally (stdio) but data lives
// on the remote server (accessed over Tailscale).
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

	if resp.StatusCode == http.StatusNotFound {
		return nil, workout.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) CurrentWorkout(ctx context.Context) (*workout.SessionDetail, error) {
	body, err := c.get(ctx, "/api/v1/workouts/current", nil)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(body)) == "null" {
		return nil, nil
	}
	var detail workout.SessionDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode current workout: %w", err)
	}
	return &detail, nil
}

func (c *HTTPClient) WorkoutSummary(ctx context.Context, sessionID int64) (*models.WorkoutSummary, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v1/workouts/%d/summary", sessionID), nil)
	if err != nil {
		return nil, err
	}
	var summary models.WorkoutSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("httpclient: decode summary: %w", err)
	}
	return &summary, nil
}

func (c *HTTPClient) WorkoutHistory(ctx context.Context, page, limit int) ([]models.SessionSummary, int, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/history", params)
	if err != nil {
		return nil, 0, err
	}
	var resp struct {
		Sessions []models.SessionSummary `json:"sessions"`
		Total    int                     `json:"total"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return resp.Sessions, resp.Total, nil
}

func (c *HTTPClient) ExerciseStats(ctx context.Context, exerciseID int64) (*models.ExerciseStats, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v1/exercises/%d/stats", exerciseID), nil)
	if errors.Is(err, workout.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats models.ExerciseStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise stats: %w", err)
	}
	return &stats, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]storage.ExerciseWithStats, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}
	var exercises []storage.ExerciseWithStats
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) ListPrograms(ctx context.Context) ([]models.Program, error) {
	body, err := c.get(ctx, "/api/v1/programs", nil)
	if err != nil {
		return nil, err
	}
	var programs []models.Program
	if err := json.Unmarshal(body, &programs); err != nil {
		return nil, fmt.Errorf("httpclient: decode programs: %w", err)
	}
	return programs, nil
}

func (c *HTTPClient) ExerciseProgression(ctx context.Context, exerciseID int64) ([]models.Performance, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v1/exercises/%d/progression", exerciseID), nil)
	if err != nil {
		return nil, err
	}
	var sets []models.Performance
	if err := json.Unmarshal(body, &sets); err != nil {
		return nil, fmt.Errorf("httpclient: decode progression: %w", err)
	}
	return sets, nil
}
