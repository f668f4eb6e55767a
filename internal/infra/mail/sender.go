package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

//go:embed templates/*.txt
var templatesFS embed.FS

var newLeadTmpl = template.Must(template.ParseFS(templatesFS, "templates/new_lead.txt"))

func NewEmailSender(host string, port int, user, password, from string, to []string) *EmailSender {
	return &EmailSender{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) Name() string { return "mail" }

func (s *EmailSender) HandleLeadCreated(_ context.Context, payload queue.LeadCreatedPayload) error {
	return s.SendNewLeadAlert(payload)
}

// SendNewLeadAlert notifies the sales inbox about a new lead. No recipients
// configured means nothing to send.
func (s *EmailSender) SendNewLeadAlert(payload queue.LeadCreatedPayload) error {
	if len(s.To) == 0 {
		return nil
	}

	body, err := renderNewLead(payload)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To...)
	if payload.Email != "" {
		m.SetHeader("Reply-To", payload.Email)
	}
	m.SetHeader("Subject", newLeadSubject(payload))
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func newLeadSubject(p queue.LeadCreatedPayload) string {
	if p.Campaign != "" {
		return fmt.Sprintf("Novo lead: %s [%s]", p.Name, p.Campaign)
	}
	return fmt.Sprintf("Novo lead: %s", p.Name)
}

func renderNewLead(p queue.LeadCreatedPayload) (string, error) {
	var buf bytes.Buffer
	if err := newLeadTmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return buf.String(), nil
}
