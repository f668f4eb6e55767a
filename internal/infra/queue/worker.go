package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadHandler reacts to a lead.created event (CRM sync, staff alert...).
type LeadHandler interface {
	Name() string
	HandleLeadCreated(ctx context.Context, payload LeadCreatedPayload) error
}

// Consumer is the subset of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  Consumer
	Handlers []LeadHandler
}

func NewWorker(ch Consumer, handlers ...LeadHandler) *Worker {
	return &Worker{
		Channel:  ch,
		Handlers: handlers,
	}
}

// Start blocks until ctx is cancelled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf("[worker] aguardando na fila '%s' (%d handlers)", queueName, len(w.Handlers))

	for {
		select {
		case <-ctx.Done():
			log.Printf("[worker] encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				log.Printf("[worker] delivery channel closed")
				return nil
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	if err := w.process(ctx, d.Body); err != nil {
		log.Printf("[worker] %v", err)
		// Sem requeue: a mensagem vai para a DLQ
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (w *Worker) process(ctx context.Context, body []byte) error {
	var payload LeadCreatedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	switch payload.Event {
	case EventLeadCreated:
	default:
		log.Printf("[worker] unknown event %q, acking", payload.Event)
		return nil
	}

	log.Printf("[worker] lead %s (%s) received", payload.LeadID, payload.Source)

	var errs []error
	for _, h := range w.Handlers {
		if err := h.HandleLeadCreated(ctx, payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("lead %s: %w", payload.LeadID, errors.Join(errs...))
	}
	return nil
}
