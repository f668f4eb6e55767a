package usecase

import "github.com/xavierca1/ligue-leads/internal/entity"

// CreateLeadInput is the body of POST /leads (form, popup and manual entry).
type CreateLeadInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Source   string `json:"source"` // vazio = manual
	Platform string `json:"platform"`
	Campaign string `json:"campaign"`
	AdSet    string `json:"adSet"`
	AdName   string `json:"adName"`
}

type IngestWebhookInput struct {
	Body      []byte
	Signature string
	Platform  string // hint from query string or header, may be empty
}

// IngestWebhookOutput mirrors the first lead in Lead/Duplicate; Results has
// one entry per lead of a batched delivery.
type IngestWebhookOutput struct {
	Lead      *entity.Lead
	Duplicate bool
	Results   []WebhookLeadResult
}

type WebhookLeadResult struct {
	Lead      *entity.Lead
	Duplicate bool
}

// UpdateLeadInput is the body of PATCH /leads/{id}. Version 0 disables the
// compare-and-swap check.
type UpdateLeadInput struct {
	ID      string  `json:"-"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
	Version int64   `json:"version"`
}

type ListLeadsInput struct {
	Status string
	Source string
	Search string
	Page   int
	Limit  int
	All    bool
}

type PaginationOutput struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type ListLeadsOutput struct {
	Leads      []*entity.Lead   `json:"leads"`
	Pagination PaginationOutput `json:"pagination"`
}
