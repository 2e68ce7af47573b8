package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tokenstd/revert-registry/internal/domain"
)

// WebhookNotifier delivers job reports by POSTing them as JSON to the
// callback URL. The timeout is injected from config so a slow receiver
// cannot stall a lint worker indefinitely.
type WebhookNotifier struct {
	httpClient *http.Client
}

func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Deliver posts the report to the callback URL and accepts any 2xx response.
func (n *WebhookNotifier) Deliver(ctx context.Context, url string, report *domain.JobReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}

// compile-time check that WebhookNotifier implements Notifier
var _ Notifier = (*WebhookNotifier)(nil)
