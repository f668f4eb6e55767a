package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrVersionConflict = errors.New("lead version conflict")
	ErrDuplicateEvent  = errors.New("webhook event already ingested")
)

// Source is the channel a lead arrived through.
type Source string

const (
	SourceWebsitePopup Source = "website_popup"
	SourceContactForm  Source = "contact_form"
	SourceMetaAds      Source = "meta_ads"
	SourceGoogleAds    Source = "google_ads"
	SourceManual       Source = "manual"
	SourceReferral     Source = "referral"
	SourceOther        Source = "other"
)

var sources = []Source{
	SourceWebsitePopup, SourceContactForm, SourceMetaAds, SourceGoogleAds,
	SourceManual, SourceReferral, SourceOther,
}

func Sources() []Source {
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}

func (s Source) Valid() bool {
	for _, v := range sources {
		if v == s {
			return true
		}
	}
	return false
}

// Status is the triage stage of a lead.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

var statuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost}

func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

type Lead struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`

	Source Source `json:"source"`

	// Attribution, only filled for ad platform leads
	Platform string `json:"platform,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	AdSet    string `json:"adSet,omitempty"`
	AdName   string `json:"adName,omitempty"`

	Status  Status `json:"status"`
	Notes   string `json:"notes,omitempty"`
	Version int64  `json:"version"`

	ExternalEventID string `json:"externalEventId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewLead assigns identity and the initial lifecycle state. Field validation
// happens before this point, in the ingestion use cases.
func NewLead(name, email string, source Source, now time.Time) *Lead {
	now = now.UTC()
	return &Lead{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Source:    source,
		Status:    StatusNew,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(l.Email) == "" {
		return errors.New("email is required")
	}
	if !l.Source.Valid() {
		return errors.New("source is invalid")
	}
	if !l.Status.Valid() {
		return errors.New("status is invalid")
	}
	return nil
}

// Clone returns a copy that can be handed out without sharing memory with a store.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// LeadFilter is a conjunction; empty fields do not constrain.
type LeadFilter struct {
	Status Status
	Source Source
	Search string
}

// Matches mirrors the SQL predicate used by the Postgres repository.
func (f LeadFilter) Matches(l *Lead) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Source != "" && l.Source != f.Source {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(l.Name), q) &&
			!strings.Contains(strings.ToLower(l.Email), q) &&
			!strings.Contains(strings.ToLower(l.Phone), q) {
			return false
		}
	}
	return true
}

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// LeadUpdate carries the mutable fields; nil means unchanged.
type LeadUpdate struct {
	Status *Status
	Notes  *string
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByExternalEventID(ctx context.Context, eventID string) (*Lead, error)
	// Update applies upd atomically. expectedVersion 0 skips the version check.
	Update(ctx context.Context, id string, upd LeadUpdate, expectedVersion int64, now time.Time) (*Lead, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter LeadFilter, page Pagination) ([]*Lead, int, error)
	ListAll(ctx context.Context, filter LeadFilter) ([]*Lead, error)
}
