package handlers

import (
	"io"
	"net/http"

	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

const (
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderMetaSignature    = "X-Hub-Signature-256"
	HeaderLeadPlatform     = "X-Lead-Platform"
)

// WebhookHandler receives ad-platform lead notifications (Meta, Google, generic).
type WebhookHandler struct {
	IngestUC *usecase.IngestWebhookUseCase
}

func NewWebhookHandler(uc *usecase.IngestWebhookUseCase) *WebhookHandler {
	return &WebhookHandler{IngestUC: uc}
}

// WebhookResponse reports the first lead in ID/Duplicate; Leads lists every
// lead of the delivery.
type WebhookResponse struct {
	Success   bool                `json:"success"`
	ID        string              `json:"id"`
	Duplicate bool                `json:"duplicate"`
	Leads     []WebhookLeadStatus `json:"leads"`
}

type WebhookLeadStatus struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		middleware.RecordWebhookRejected("body")
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeMalformedPayload, "could not read request body", nil)
		return
	}

	signature := r.Header.Get(HeaderWebhookSignature)
	if signature == "" {
		signature = r.Header.Get(HeaderMetaSignature)
	}

	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = r.Header.Get(HeaderLeadPlatform)
	}

	out, err := h.IngestUC.Execute(r.Context(), usecase.IngestWebhookInput{
		Body:      body,
		Signature: signature,
		Platform:  platform,
	})
	if err != nil {
		if de, ok := usecase.AsDomainError(err); ok {
			middleware.RecordWebhookRejected(de.Code)
		}
		writeUseCaseError(w, r, err)
		return
	}

	resp := WebhookResponse{
		Success:   true,
		ID:        out.Lead.ID,
		Duplicate: out.Duplicate,
		Leads:     make([]WebhookLeadStatus, 0, len(out.Results)),
	}
	for _, res := range out.Results {
		if !res.Duplicate {
			middleware.RecordLeadIngested(string(res.Lead.Source))
		}
		resp.Leads = append(resp.Leads, WebhookLeadStatus{ID: res.Lead.ID, Duplicate: res.Duplicate})
	}
	writeJSON(w, http.StatusOK, resp)
}
