package mail

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func payload() queue.LeadCreatedPayload {
	return queue.LeadCreatedPayload{
		Event:     queue.EventLeadCreated,
		LeadID:    "abc",
		Name:      "Jane Doe",
		Email:     "jane@x.com",
		Source:    "meta_ads",
		Platform:  "facebook",
		Campaign:  "Spring24",
		CreatedAt: time.Date(2024, 4, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestRenderNewLead(t *testing.T) {
	body, err := renderNewLead(payload())
	require.NoError(t, err)

	assert.Contains(t, body, "meta_ads / facebook")
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "Campanha: Spring24")
	assert.Contains(t, body, "01/04/2024 10:30")
	assert.NotContains(t, body, "Telefone")
}

func TestSendNewLeadAlert(t *testing.T) {
	d := &fakeDialer{}
	s := &EmailSender{From: "leads@ligue.com", To: []string{"vendas@ligue.com"}, dialer: d}

	require.NoError(t, s.SendNewLeadAlert(payload()))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"Novo lead: Jane Doe [Spring24]"}, d.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"jane@x.com"}, d.sent[0].GetHeader("Reply-To"))
}

func TestSendNewLeadAlertWithoutRecipients(t *testing.T) {
	d := &fakeDialer{}
	s := &EmailSender{dialer: d}

	assert.NoError(t, s.SendNewLeadAlert(payload()))
	assert.Empty(t, d.sent)
}

func TestSendNewLeadAlertSMTPError(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	s := &EmailSender{To: []string{"a@b.com"}, dialer: d}

	assert.ErrorContains(t, s.SendNewLeadAlert(payload()), "connection refused")
}
