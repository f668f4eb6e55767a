package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// LeadLifecycleUseCase mutates existing leads. Every status may move to every
// other status; ordering is intentionally not enforced.
type LeadLifecycleUseCase struct {
	Repo LeadRepositoryInterface
	Now  Clock
}

func NewLeadLifecycleUseCase(repo LeadRepositoryInterface) *LeadLifecycleUseCase {
	return &LeadLifecycleUseCase{Repo: repo, Now: systemClock}
}

func (uc *LeadLifecycleUseCase) SetStatus(ctx context.Context, id, status string, expectedVersion int64) (*entity.Lead, error) {
	return uc.Update(ctx, UpdateLeadInput{ID: id, Status: &status, Version: expectedVersion})
}

func (uc *LeadLifecycleUseCase) SetNotes(ctx context.Context, id, notes string, expectedVersion int64) (*entity.Lead, error) {
	return uc.Update(ctx, UpdateLeadInput{ID: id, Notes: &notes, Version: expectedVersion})
}

// Update applies status and/or notes in one write.
func (uc *LeadLifecycleUseCase) Update(ctx context.Context, input UpdateLeadInput) (*entity.Lead, error) {
	if input.Status == nil && input.Notes == nil {
		return nil, newValidationError([]ValidationError{{"body", "status or notes is required"}})
	}
	if input.Version < 0 {
		return nil, newValidationError([]ValidationError{{"version", "must not be negative"}})
	}

	var upd entity.LeadUpdate
	if input.Status != nil {
		status := entity.Status(*input.Status)
		if !status.Valid() {
			return nil, newInvalidStatusError(*input.Status)
		}
		upd.Status = &status
	}
	if input.Notes != nil {
		if len(*input.Notes) > maxMessageLen {
			return nil, newValidationError([]ValidationError{{"notes", "must not exceed 5000 characters"}})
		}
		upd.Notes = input.Notes
	}

	lead, err := uc.Repo.Update(ctx, input.ID, upd, input.Version, uc.Now())
	if err != nil {
		return nil, translateRepoError(input.ID, "update lead", err)
	}

	if upd.Status != nil {
		log.Printf("[leads] %s status -> %s (v%d)", lead.ID, lead.Status, lead.Version)
	}
	return lead, nil
}

func (uc *LeadLifecycleUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return translateRepoError(id, "delete lead", err)
	}
	log.Printf("[leads] %s deleted", id)
	return nil
}

func translateRepoError(id, op string, err error) error {
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		return newNotFoundError(id)
	case errors.Is(err, entity.ErrVersionConflict):
		return newConflictError(id)
	default:
		return newDatabaseError(op, err)
	}
}
