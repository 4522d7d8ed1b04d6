package testing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIScenarios builds request functions against a running instance.
type APIScenarios struct {
	baseURL string
	client  *http.Client
}

func NewAPIScenarios(baseURL string) *APIScenarios {
	return &APIScenarios{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// HealthCheck probes the liveness endpoint.
func (s *APIScenarios) HealthCheck() RequestFunc {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
		if err != nil {
			return err
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return nil
	}
}

// InboxDelivery posts an activity document to the shared inbox. The
// payload is sent as-is each time so the instance exercises its full
// parse and verify path.
func (s *APIScenarios) InboxDelivery(activity []byte) RequestFunc {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			s.baseURL+"/inbox", bytes.NewReader(activity))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/activity+json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		// Rejections are a valid outcome for a synthetic payload; only
		// transport-level and server errors count as failures.
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return nil
	}
}

// VoteSubmit sends an authenticated like for the given post.
func (s *APIScenarios) VoteSubmit(token, postID string, score int16) RequestFunc {
	body, _ := json.Marshal(map[string]interface{}{
		"postId": postID,
		"score":  score,
	})

	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			s.baseURL+"/post/like", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return nil
	}
}
