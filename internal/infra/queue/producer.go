package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	EventLeadCreated = "lead.created"

	OriginDirect  = "DIRECT"
	OriginWebhook = "WEBHOOK"
)

type LeadCreatedPayload struct {
	Event     string    `json:"event"`
	Origin    string    `json:"origin"`
	LeadID    string    `json:"lead_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Platform  string    `json:"platform"`
	Campaign  string    `json:"campaign"`
	AdSet     string    `json:"ad_set"`
	AdName    string    `json:"ad_name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLeadCreatedPayload(lead *entity.Lead, origin string) LeadCreatedPayload {
	return LeadCreatedPayload{
		Event:     EventLeadCreated,
		Origin:    origin,
		LeadID:    lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Subject:   lead.Subject,
		Message:   lead.Message,
		Source:    string(lead.Source),
		Platform:  lead.Platform,
		Campaign:  lead.Campaign,
		AdSet:     lead.AdSet,
		AdName:    lead.AdName,
		CreatedAt: lead.CreatedAt,
	}
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadCreated(ctx context.Context, payload LeadCreatedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         EventLeadCreated,
			MessageId:    payload.LeadID,
			Timestamp:    payload.CreatedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}
