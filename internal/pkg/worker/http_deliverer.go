package worker

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPDeliverer posts activities to remote inboxes. Request signing and
// delivery scheduling policy belong to the surrounding infrastructure;
// this is the plain transport.
type HTTPDeliverer struct {
	client *http.Client
}

func NewHTTPDeliverer(timeout time.Duration) *HTTPDeliverer {
	return &HTTPDeliverer{
		client: &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDeliverer) Deliver(ctx context.Context, inbox string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inbox, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/activity+json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver to %s: unexpected status %d", inbox, resp.StatusCode)
	}
	return nil
}
