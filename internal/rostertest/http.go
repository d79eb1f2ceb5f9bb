package rostertest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/okian/teamforge/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitFormation submits the roster and returns the assigned job id.
func submitFormation(ctx context.Context, client *HTTPClient, config *Config, roster []Participant, stats *Stats) (string, error) {
	req := FormationRequest{
		RequestID: uuid.New().String(),
		Competition: Competition{
			Name:          "roster-test",
			Kind:          "Synthetic",
			TeamSize:      config.TeamSize,
			RequiredRoles: config.RequiredRoles,
		},
		Roster: roster,
	}
	if config.Seed != 0 {
		seed := config.Seed
		req.Seed = &seed
	}

	resp, err := client.Post(ctx, config.BaseURL+"/formations", req)
	if err != nil {
		return "", fmt.Errorf("failed to submit formation: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read submission response: %w", err)
	}

	if resp.StatusCode != StatusAccepted {
		return "", fmt.Errorf("submission rejected with status %d: %s", resp.StatusCode, string(body))
	}

	var ack AckResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", fmt.Errorf("failed to parse submission response: %w", err)
	}
	if ack.JobID == "" {
		return "", fmt.Errorf("submission accepted but no job id returned")
	}

	stats.JobsSubmitted++
	logger.Get().Info(ctx, "formation job submitted", logger.String("jobID", ack.JobID))
	return ack.JobID, nil
}

// pollJob polls the job until it reaches a terminal state.
func pollJob(ctx context.Context, client *HTTPClient, config *Config, jobID string, stats *Stats) (*JobResponse, error) {
	url := config.BaseURL + "/formations/" + jobID
	deadline := time.Now().Add(config.PollTimeout)

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled while polling job: %w", ctx.Err())
		default:
		}

		resp, err := client.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to poll job: %w", err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to read job response: %w", err)
		}
		if resp.StatusCode != StatusOK {
			return nil, fmt.Errorf("job poll failed with status %d: %s", resp.StatusCode, string(body))
		}

		var job JobResponse
		if err := json.Unmarshal(body, &job); err != nil {
			return nil, fmt.Errorf("failed to parse job response: %w", err)
		}

		stats.Polls++
		switch job.Status {
		case "completed", "infeasible", "invalid":
			return &job, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("job %s still %s after %s", jobID, job.Status, config.PollTimeout)
		}
		time.Sleep(config.PollInterval)
	}
}
