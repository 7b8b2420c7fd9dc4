package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const (
	// Exchange names
	BillingExchange = "billing_exchange"

	// Routing keys
	OrderCreatedRoutingKey = "order.created"
	InvoicePaidRoutingKey  = "invoice.paid"
)

// OrderCreatedEvent é emitido após o commit do pipeline de criação de pedido
type OrderCreatedEvent struct {
	EventID     string          `json:"event_id"`
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	InvoiceID   string          `json:"invoice_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewOrderCreatedEvent cria o evento a partir do pedido e da fatura persistidos
func NewOrderCreatedEvent(order *Order, invoice *Invoice) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventID:     uuid.New().String(),
		OrderID:     order.OrderID,
		CustomerID:  order.CustomerID,
		InvoiceID:   invoice.InvoiceID,
		TotalAmount: invoice.TotalAmount,
		CreatedAt:   time.Now(),
	}
}

// InvoicePaidEvent é emitido quando o acumulado de pagamentos quita a fatura
type InvoicePaidEvent struct {
	EventID     string          `json:"event_id"`
	InvoiceID   string          `json:"invoice_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	PaidAt      time.Time       `json:"paid_at"`
}

// NewInvoicePaidEvent cria o evento de quitação da fatura
func NewInvoicePaidEvent(invoice *Invoice, totalPaid decimal.Decimal) InvoicePaidEvent {
	return InvoicePaidEvent{
		EventID:     uuid.New().String(),
		InvoiceID:   invoice.InvoiceID,
		TotalAmount: invoice.TotalAmount,
		TotalPaid:   totalPaid,
		PaidAt:      time.Now(),
	}
}

// EventPublisher abstrai a publicação de eventos de faturamento
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
	PublishInvoicePaid(ctx context.Context, event InvoicePaidEvent) error
	Close() error
}

// RabbitMQPublisher publica eventos de faturamento em um exchange topic
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitMQPublisher conecta no broker e declara o exchange de faturamento
func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		BillingExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitMQPublisher{conn: conn, channel: channel}, nil
}

// PublishOrderCreated publica o evento order.created
func (p *RabbitMQPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	return p.publish(ctx, OrderCreatedRoutingKey, event.EventID, event)
}

// PublishInvoicePaid publica o evento invoice.paid
func (p *RabbitMQPublisher) PublishInvoicePaid(ctx context.Context, event InvoicePaidEvent) error {
	return p.publish(ctx, InvoicePaidRoutingKey, event.EventID, event)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey, messageID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		BillingExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   messageID,
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	return nil
}

// Close fecha o canal e a conexão com o broker
func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NopEventPublisher descarta eventos quando o broker não está configurado
type NopEventPublisher struct{}

func (NopEventPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	return nil
}

func (NopEventPublisher) PublishInvoicePaid(ctx context.Context, event InvoicePaidEvent) error {
	return nil
}

func (NopEventPublisher) Close() error { return nil }
