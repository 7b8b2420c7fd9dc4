package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus representa os possíveis status de uma fatura
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// PaymentMethod representa os métodos de pagamento aceitos
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// ErrorKind classifica as falhas de domínio para o mapeamento HTTP
type ErrorKind int

const (
	KindInfrastructure ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
)

// DomainError carrega o tipo da falha junto com a mensagem
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError cria um erro de validação (rejeitado antes de qualquer escrita)
func NewValidationError(format string, args ...any) error {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError cria um erro de conflito detectado dentro da transação
func NewConflictError(format string, args ...any) error {
	return &DomainError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError cria um erro de entidade inexistente
func NewNotFoundError(format string, args ...any) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf extrai o tipo de um erro; falhas desconhecidas contam como infraestrutura
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInfrastructure
}

// Product representa um produto do estoque
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Order representa o cabeçalho de um pedido
type Order struct {
	ID         int64     `json:"id" db:"id"`
	OrderID    string    `json:"order_id" db:"order_id"`
	CustomerID string    `json:"customer_id" db:"customer_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// NewOrder cria uma nova instância de Order
func NewOrder(orderID, customerID string) *Order {
	return &Order{
		OrderID:    orderID,
		CustomerID: customerID,
		CreatedAt:  time.Now(),
	}
}

// OrderItem representa uma linha de um pedido
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	ItemType  string          `json:"item_type" db:"item_type"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Deposit   decimal.Decimal `json:"deposit" db:"deposit"`
	Total     decimal.Decimal `json:"total" db:"total"`
}

// NewOrderItem cria uma linha de pedido com o total derivado.
// O depósito nunca excede quantity*price, então o total não fica negativo.
func NewOrderItem(orderID, productID int64, itemType string, quantity int, price, deposit decimal.Decimal) *OrderItem {
	gross := price.Mul(decimal.NewFromInt(int64(quantity)))
	if deposit.LessThan(decimal.Zero) {
		deposit = decimal.Zero
	}
	if deposit.GreaterThan(gross) {
		deposit = gross
	}

	return &OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		ItemType:  itemType,
		Quantity:  quantity,
		Price:     price,
		Deposit:   deposit,
		Total:     gross.Sub(deposit),
	}
}

// Invoice representa a fatura derivada de um pedido
type Invoice struct {
	ID          int64           `json:"id" db:"id"`
	InvoiceID   string          `json:"invoice_id" db:"invoice_id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// NewInvoice cria uma fatura pendente para um pedido
func NewInvoice(invoiceID string, orderID int64, totalAmount decimal.Decimal) *Invoice {
	return &Invoice{
		InvoiceID:   invoiceID,
		OrderID:     orderID,
		TotalAmount: totalAmount,
		Status:      InvoiceStatusPending,
		CreatedAt:   time.Now(),
	}
}

// MarkPaid transiciona a fatura para paga
func (i *Invoice) MarkPaid() error {
	if i.Status == InvoiceStatusPaid {
		return errors.New("invoice is already paid")
	}

	i.Status = InvoiceStatusPaid
	return nil
}

// SettledBy verifica se o acumulado pago quita a fatura
func (i *Invoice) SettledBy(totalPaid decimal.Decimal) bool {
	return totalPaid.GreaterThanOrEqual(i.TotalAmount)
}

// Payment representa um pagamento registrado contra uma fatura (append-only)
type Payment struct {
	ID           int64           `json:"id" db:"id"`
	InvoiceID    int64           `json:"invoice_id" db:"invoice_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Method       string          `json:"method" db:"method"`
	AmountPaid   decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	ChangeAmount decimal.Decimal `json:"change_amount" db:"change_amount"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// NewPayment cria uma nova instância de Payment
func NewPayment(invoiceID int64, amount decimal.Decimal, method string) *Payment {
	return &Payment{
		InvoiceID:    invoiceID,
		Amount:       amount,
		Method:       method,
		AmountPaid:   amount,
		ChangeAmount: decimal.Zero,
		CreatedAt:    time.Now(),
	}
}
