package notify

import (
	"context"

	"github.com/tokenstd/revert-registry/internal/domain"
)

// Notifier delivers a finished job report to the callback URL the submitter
// supplied. Mocking this interface in tests gives full control over delivery
// behaviour without making real HTTP calls.
type Notifier interface {
	Deliver(ctx context.Context, url string, report *domain.JobReport) error
}
