package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type CreateLeadUseCase struct {
	Repo      LeadRepositoryInterface
	Publisher LeadEventPublisher
	Now       Clock
}

// NewCreateLeadUseCase builds the direct submission path. publisher may be nil.
func NewCreateLeadUseCase(repo LeadRepositoryInterface, publisher LeadEventPublisher) *CreateLeadUseCase {
	return &CreateLeadUseCase{
		Repo:      repo,
		Publisher: publisher,
		Now:       systemClock,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	source := entity.SourceManual
	if input.Source != "" {
		source = entity.Source(input.Source)
	}

	email, _ := normalizeEmail(input.Email)
	lead := entity.NewLead(input.Name, email, source, uc.Now())
	lead.Phone = strings.TrimSpace(input.Phone)
	lead.Company = strings.TrimSpace(input.Company)
	lead.Subject = strings.TrimSpace(input.Subject)
	lead.Message = strings.TrimSpace(input.Message)
	lead.Platform = strings.TrimSpace(input.Platform)
	lead.Campaign = strings.TrimSpace(input.Campaign)
	lead.AdSet = strings.TrimSpace(input.AdSet)
	lead.AdName = strings.TrimSpace(input.AdName)

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, newDatabaseError("persist lead", err)
	}

	log.Printf("[leads] created %s source=%s", lead.ID, lead.Source)
	publishLeadCreated(ctx, uc.Publisher, lead, queue.OriginDirect)
	return lead, nil
}

// publishLeadCreated is best effort: the lead is already persisted.
func publishLeadCreated(ctx context.Context, publisher LeadEventPublisher, lead *entity.Lead, origin string) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishLeadCreated(ctx, queue.NewLeadCreatedPayload(lead, origin)); err != nil {
		log.Printf("[leads] WARNING: lead %s saved but event publish failed: %v", lead.ID, err)
	}
}
