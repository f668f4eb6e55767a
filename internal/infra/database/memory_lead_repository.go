package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// MemoryLeadRepository keeps leads in process. Used when DATABASE_URL is not
// set and by tests; it follows the same ordering and filter rules as LeadRepository.
type MemoryLeadRepository struct {
	mu     sync.RWMutex
	leads  map[string]*entity.Lead
	events map[string]string // external event id -> lead id
}

func NewMemoryLeadRepository() *MemoryLeadRepository {
	return &MemoryLeadRepository{
		leads:  make(map[string]*entity.Lead),
		events: make(map[string]string),
	}
}

func (r *MemoryLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lead.ExternalEventID != "" {
		if _, exists := r.events[lead.ExternalEventID]; exists {
			return entity.ErrDuplicateEvent
		}
		r.events[lead.ExternalEventID] = lead.ID
	}
	r.leads[lead.ID] = lead.Clone()
	return nil
}

func (r *MemoryLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return lead.Clone(), nil
}

func (r *MemoryLeadRepository) FindByExternalEventID(ctx context.Context, eventID string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.events[eventID]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return lead.Clone(), nil
}

func (r *MemoryLeadRepository) Update(ctx context.Context, id string, upd entity.LeadUpdate, expectedVersion int64, now time.Time) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	if expectedVersion != 0 && lead.Version != expectedVersion {
		return nil, entity.ErrVersionConflict
	}

	if upd.Status != nil {
		lead.Status = *upd.Status
	}
	if upd.Notes != nil {
		lead.Notes = *upd.Notes
	}
	lead.Version++
	lead.UpdatedAt = now.UTC()
	return lead.Clone(), nil
}

func (r *MemoryLeadRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if lead.ExternalEventID != "" {
		delete(r.events, lead.ExternalEventID)
	}
	delete(r.leads, id)
	return nil
}

func (r *MemoryLeadRepository) List(ctx context.Context, filter entity.LeadFilter, page entity.Pagination) ([]*entity.Lead, int, error) {
	all, _ := r.ListAll(ctx, filter)
	total := len(all)

	start := page.Offset()
	if start >= total {
		return []*entity.Lead{}, total, nil
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *MemoryLeadRepository) ListAll(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	r.mu.RLock()
	out := make([]*entity.Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		if filter.Matches(lead) {
			out = append(out, lead.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryLeadRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}
