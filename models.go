package main

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest representa uma linha de pedido enviada pelo dashboard.
// O campo Total é aceito por compatibilidade, mas o servidor sempre recalcula.
type OrderItemRequest struct {
	ProductID int64           `json:"product_id" binding:"required"`
	ItemType  string          `json:"item_type"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
	Deposit   decimal.Decimal `json:"deposit"`
	Total     decimal.Decimal `json:"total"`
}

// CreateOrderRequest representa a requisição para criar um pedido
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// RecordPaymentRequest representa a requisição para registrar um pagamento
type RecordPaymentRequest struct {
	InvoiceID string          `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required,oneof=cash card"`
}

// OrderSummary é a linha agregada exibida na listagem de pedidos
type OrderSummary struct {
	ID            int64           `json:"id"`
	OrderID       string          `json:"order_id"`
	CustomerID    string          `json:"customer_id"`
	CreatedAt     time.Time       `json:"created_at"`
	TotalItems    int             `json:"total_items"`
	OrderTotal    decimal.Decimal `json:"order_total"`
	InvoiceStatus string          `json:"invoice_status"`
	InvoiceID     string          `json:"invoice_id"`
}

// OrderDetails é o pedido completo com itens e pagamentos
type OrderDetails struct {
	ID            int64           `json:"id"`
	OrderID       string          `json:"order_id"`
	CustomerID    string          `json:"customer_id"`
	CreatedAt     time.Time       `json:"created_at"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	Items         []OrderItem     `json:"items"`
	Payments      []Payment       `json:"payments"`
}

// InvoiceSummary é a fatura acompanhada dos identificadores do pedido
type InvoiceSummary struct {
	ID          int64           `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InvoiceLineItem é uma linha de pedido enriquecida com o nome do produto
type InvoiceLineItem struct {
	OrderItem
	ItemName string `json:"item_name"`
}

// InvoiceLedger é a fatura com itens, pagamentos e o saldo corrente
type InvoiceLedger struct {
	InvoiceSummary
	Items            []InvoiceLineItem `json:"items"`
	Payments         []Payment         `json:"payments"`
	TotalPaid        decimal.Decimal   `json:"total_paid"`
	RemainingBalance decimal.Decimal   `json:"remaining_balance"`
}

// PaymentDetails é o resumo retornado após registrar um pagamento.
// RemainingBalance pode ficar negativo quando há sobrepagamento.
type PaymentDetails struct {
	InvoiceID        string          `json:"invoice_id"`
	Amount           decimal.Decimal `json:"amount"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// PaymentResult agrega o resumo do pagamento e a fatura atualizada
type PaymentResult struct {
	Details PaymentDetails `json:"payment_details"`
	Invoice *Invoice       `json:"invoice"`
}
