package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type IngestWebhookUseCase struct {
	Repo      LeadRepositoryInterface
	Publisher LeadEventPublisher
	// Secret enables signature checks. Empty accepts unsigned payloads.
	Secret string
	Now    Clock
}

func NewIngestWebhookUseCase(repo LeadRepositoryInterface, publisher LeadEventPublisher, secret string) *IngestWebhookUseCase {
	return &IngestWebhookUseCase{
		Repo:      repo,
		Publisher: publisher,
		Secret:    secret,
		Now:       systemClock,
	}
}

func (uc *IngestWebhookUseCase) Execute(ctx context.Context, input IngestWebhookInput) (*IngestWebhookOutput, error) {
	units, parseErr := parseWebhookPayload(input.Body)

	if !uc.authentic(input, units) {
		log.Printf("[webhook] rejected payload: invalid signature (platform hint %q)", input.Platform)
		return nil, &DomainError{Code: CodeInvalidSignature, Message: "invalid webhook signature"}
	}

	if parseErr != nil {
		log.Printf("[webhook] dropped payload: %v", parseErr)
		return nil, newMalformedPayloadError(parseErr.Error(), nil)
	}

	// A batch is validated as a whole so a bad entry cannot leave it half stored.
	leads := make([]webhookLead, len(units))
	var missing []ValidationError
	for i, fields := range units {
		leads[i] = fields.toLead()
		prefix := ""
		if len(units) > 1 {
			prefix = fmt.Sprintf("leads[%d].", i)
		}
		missing = append(missing, validateWebhookLead(leads[i], prefix)...)
	}
	if len(missing) > 0 {
		err := newMalformedPayloadError("webhook payload missing required lead fields", missing)
		log.Printf("[webhook] dropped payload (hint %q): %v", input.Platform, missing)
		return nil, err
	}

	out := &IngestWebhookOutput{Results: make([]WebhookLeadResult, 0, len(leads))}
	for _, wl := range leads {
		lead, duplicate, err := uc.ingest(ctx, input.Platform, wl)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, WebhookLeadResult{Lead: lead, Duplicate: duplicate})
	}
	out.Lead = out.Results[0].Lead
	out.Duplicate = out.Results[0].Duplicate
	return out, nil
}

func validateWebhookLead(wl webhookLead, prefix string) []ValidationError {
	var missing []ValidationError
	if strings.TrimSpace(wl.Name) == "" {
		missing = append(missing, ValidationError{prefix + "name", "could not be extracted"})
	}
	_, emailOK := normalizeEmail(wl.Email)
	switch {
	case strings.TrimSpace(wl.Email) == "":
		missing = append(missing, ValidationError{prefix + "email", "could not be extracted"})
	case !emailOK:
		missing = append(missing, ValidationError{prefix + "email", "is invalid"})
	}
	return missing
}

// ingest stores one validated lead unless its event key was already seen.
func (uc *IngestWebhookUseCase) ingest(ctx context.Context, hint string, wl webhookLead) (*entity.Lead, bool, error) {
	source, platform := resolveWebhookSource(hint, wl.Platform)
	email, _ := normalizeEmail(wl.Email)

	eventKey := webhookEventKey(source, wl)
	existing, err := uc.Repo.FindByExternalEventID(ctx, eventKey)
	switch {
	case err == nil:
		log.Printf("[webhook] duplicate delivery %s -> lead %s", eventKey, existing.ID)
		return existing, true, nil
	case !errors.Is(err, entity.ErrLeadNotFound):
		return nil, false, newDatabaseError("check webhook event", err)
	}

	lead := entity.NewLead(truncate(wl.Name, maxNameLen), email, source, uc.Now())
	lead.Phone = truncate(wl.Phone, maxShortLen)
	lead.Company = truncate(wl.Company, maxShortLen)
	lead.Message = truncate(wl.Message, maxMessageLen)
	lead.Platform = truncate(platform, maxShortLen)
	lead.Campaign = truncate(wl.Campaign, maxShortLen)
	lead.AdSet = truncate(wl.AdSet, maxShortLen)
	lead.AdName = truncate(wl.AdName, maxShortLen)
	lead.ExternalEventID = eventKey

	if err := uc.Repo.Create(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrDuplicateEvent) {
			// Concurrent redelivery won the insert.
			if existing, findErr := uc.Repo.FindByExternalEventID(ctx, eventKey); findErr == nil {
				return existing, true, nil
			}
		}
		return nil, false, newDatabaseError("persist webhook lead", err)
	}

	log.Printf("[webhook] created %s source=%s campaign=%q", lead.ID, lead.Source, lead.Campaign)
	publishLeadCreated(ctx, uc.Publisher, lead, queue.OriginWebhook)
	return lead, false, nil
}

// authentic accepts a valid HMAC header, or for Google lead forms (which cannot
// sign requests) a google_key field equal to the secret.
func (uc *IngestWebhookUseCase) authentic(input IngestWebhookInput, units []webhookFields) bool {
	if uc.Secret == "" {
		return true
	}
	if VerifyWebhookSignature(uc.Secret, input.Body, input.Signature) {
		return true
	}
	if len(units) != 1 {
		return false
	}
	fields := units[0]
	source, _ := resolveWebhookSource(input.Platform, fields.first(webhookAliases.platform))
	key := fields.first(webhookAliases.googleKey)
	return source == entity.SourceGoogleAds && key != "" &&
		subtle.ConstantTimeCompare([]byte(key), []byte(uc.Secret)) == 1
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := 0
	for i := range s {
		if i > max {
			break
		}
		cut = i
	}
	return s[:cut]
}
