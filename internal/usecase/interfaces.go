package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type LeadRepositoryInterface = entity.LeadRepositoryInterface

type LeadEventPublisher interface {
	PublishLeadCreated(ctx context.Context, payload queue.LeadCreatedPayload) error
}

// Clock is injectable so tests can pin createdAt.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
