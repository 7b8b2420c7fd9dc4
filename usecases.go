package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingUseCase contém a lógica de negócio do pipeline pedido -> fatura -> pagamento
type BillingUseCase struct {
	repository BillingRepository
	sequences  *SequenceAllocator
	events     EventPublisher
	alerts     *StockAlertNotifier
	logger     *zap.Logger
}

// NewBillingUseCase cria uma nova instância de BillingUseCase
func NewBillingUseCase(
	repository BillingRepository,
	sequences *SequenceAllocator,
	events EventPublisher,
	alerts *StockAlertNotifier,
	logger *zap.Logger,
) *BillingUseCase {
	return &BillingUseCase{
		repository: repository,
		sequences:  sequences,
		events:     events,
		alerts:     alerts,
		logger:     logger,
	}
}

// CreateOrder executa o pipeline completo em uma única transação:
// aloca identificadores, insere o pedido e as linhas, baixa o estoque
// e gera a fatura. Qualquer falha desfaz tudo.
func (uc *BillingUseCase) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderSummary, error) {
	if len(req.Items) == 0 {
		return nil, NewValidationError("no items provided for order")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, NewValidationError("quantity must be greater than zero for product %d", item.ProductID)
		}
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderNumber, err := uc.sequences.NextOrderID(ctx, tx)
	if err != nil {
		return nil, err
	}
	customerNumber, err := uc.sequences.NextCustomerID(ctx, tx)
	if err != nil {
		return nil, err
	}

	order := NewOrder(orderNumber, customerNumber)
	if err := uc.repository.InsertOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	uc.logger.Info("➡️ creating order",
		zap.String("order_id", order.OrderID),
		zap.String("customer_id", order.CustomerID),
		zap.Int("items", len(req.Items)),
	)

	lowStock := []Product{}
	for _, requested := range req.Items {
		// Relê o produto com lock pessimista; o estoque visto aqui é o vigente
		product, err := uc.repository.GetProductForUpdate(ctx, tx, requested.ProductID)
		if err != nil {
			return nil, err
		}

		if product.Stock < requested.Quantity {
			uc.logger.Warn("❌ insufficient stock",
				zap.String("order_id", order.OrderID),
				zap.String("product", product.Name),
				zap.Int("stock", product.Stock),
				zap.Int("requested", requested.Quantity),
			)
			return nil, NewConflictError("insufficient stock for product %s", product.Name)
		}

		item := NewOrderItem(order.ID, product.ID, requested.ItemType, requested.Quantity, requested.Price, requested.Deposit)
		if err := uc.repository.InsertOrderItem(ctx, tx, item); err != nil {
			return nil, err
		}

		if err := uc.repository.DecreaseStock(ctx, tx, product.ID, requested.Quantity); err != nil {
			return nil, err
		}

		if remaining := product.Stock - requested.Quantity; uc.alerts.ShouldAlert(remaining) {
			product.Stock = remaining
			lowStock = append(lowStock, *product)
		}
	}

	// O total da fatura vem do agregado das linhas persistidas, nunca do cliente
	total, err := uc.repository.OrderItemsTotal(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	invoice, err := uc.createInvoiceForOrder(ctx, tx, order.ID, total)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	ordersCreatedTotal.Inc()
	uc.logger.Info("✅ order created",
		zap.String("order_id", order.OrderID),
		zap.String("invoice_id", invoice.InvoiceID),
		zap.String("total", total.String()),
	)

	uc.publishOrderCreated(ctx, order, invoice)
	for _, product := range lowStock {
		uc.alerts.Alert(ctx, product, uc.logger)
	}

	return &OrderSummary{
		ID:            order.ID,
		OrderID:       order.OrderID,
		CustomerID:    order.CustomerID,
		CreatedAt:     order.CreatedAt,
		TotalItems:    len(req.Items),
		OrderTotal:    total,
		InvoiceStatus: invoice.Status,
		InvoiceID:     invoice.InvoiceID,
	}, nil
}

// createInvoiceForOrder gera a fatura 1:1 do pedido dentro da transação corrente
func (uc *BillingUseCase) createInvoiceForOrder(ctx context.Context, tx Tx, orderID int64, totalAmount decimal.Decimal) (*Invoice, error) {
	exists, err := uc.repository.HasInvoiceForOrder(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}
	if exists {
		return nil, NewConflictError("order %d already has an invoice", orderID)
	}

	invoiceNumber, err := uc.sequences.NextInvoiceID(ctx, tx)
	if err != nil {
		return nil, err
	}

	invoice := NewInvoice(invoiceNumber, orderID, totalAmount)
	if err := uc.repository.InsertInvoice(ctx, tx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// RecordPayment registra um pagamento contra a fatura e transiciona o status
// para paga quando o acumulado cobre o total. Sobrepagamento é aceito e
// registrado; o saldo restante pode ficar negativo.
func (uc *BillingUseCase) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	if req.InvoiceID == "" {
		return nil, NewValidationError("invoice ID is required")
	}
	if !req.Amount.IsPositive() {
		return nil, NewValidationError("valid amount is required")
	}
	if req.Method != PaymentMethodCash && req.Method != PaymentMethodCard {
		return nil, NewValidationError("payment method must be cash or card")
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	invoice, err := uc.repository.GetInvoiceByNumberForUpdate(ctx, tx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status == InvoiceStatusPaid {
		return nil, NewConflictError("invoice %s is already paid", req.InvoiceID)
	}

	payment := NewPayment(invoice.ID, req.Amount, req.Method)
	if err := uc.repository.InsertPayment(ctx, tx, payment); err != nil {
		return nil, err
	}

	totalPaid, err := uc.repository.TotalPaid(ctx, tx, invoice.ID)
	if err != nil {
		return nil, err
	}

	settled := invoice.SettledBy(totalPaid)
	if settled {
		if err := uc.repository.MarkInvoicePaid(ctx, tx, invoice.ID); err != nil {
			return nil, err
		}
		invoice.Status = InvoiceStatusPaid
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	paymentsRecordedTotal.Inc()
	paymentAmount.Observe(req.Amount.InexactFloat64())
	uc.logger.Info("✅ payment recorded",
		zap.String("invoice_id", invoice.InvoiceID),
		zap.String("amount", req.Amount.String()),
		zap.String("total_paid", totalPaid.String()),
		zap.Bool("settled", settled),
	)

	if settled {
		invoicesPaidTotal.Inc()
		uc.publishInvoicePaid(ctx, invoice, totalPaid)
	}

	return &PaymentResult{
		Details: PaymentDetails{
			InvoiceID:        invoice.InvoiceID,
			Amount:           req.Amount,
			TotalPaid:        totalPaid,
			RemainingBalance: invoice.TotalAmount.Sub(totalPaid),
		},
		Invoice: invoice,
	}, nil
}

// DeleteOrder remove o pedido e toda a cadeia dependente em uma transação
func (uc *BillingUseCase) DeleteOrder(ctx context.Context, orderID int64) error {
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := uc.repository.DeleteOrderCascade(ctx, tx, orderID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order deletion: %w", err)
	}

	uc.logger.Info("🗑️ order deleted", zap.Int64("order_ref", orderID))
	return nil
}

// DeleteInvoice remove a fatura e seus pagamentos em uma transação
func (uc *BillingUseCase) DeleteInvoice(ctx context.Context, invoiceID int64) error {
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := uc.repository.DeleteInvoiceCascade(ctx, tx, invoiceID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice deletion: %w", err)
	}

	uc.logger.Info("🗑️ invoice deleted", zap.Int64("invoice_ref", invoiceID))
	return nil
}

// ListOrders retorna os pedidos agregados para o dashboard
func (uc *BillingUseCase) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	return uc.repository.ListOrders(ctx)
}

// GetOrder retorna o pedido completo com linhas e pagamentos
func (uc *BillingUseCase) GetOrder(ctx context.Context, orderID int64) (*OrderDetails, error) {
	details, err := uc.repository.GetOrderWithInvoice(ctx, orderID)
	if err != nil {
		return nil, err
	}

	details.Items, err = uc.repository.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	details.Payments, err = uc.repository.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return details, nil
}

// ListInvoices retorna as faturas para o dashboard
func (uc *BillingUseCase) ListInvoices(ctx context.Context) ([]InvoiceSummary, error) {
	return uc.repository.ListInvoices(ctx)
}

// GetInvoice retorna uma fatura pelo id substituto
func (uc *BillingUseCase) GetInvoice(ctx context.Context, invoiceID int64) (*InvoiceSummary, error) {
	return uc.repository.GetInvoice(ctx, invoiceID)
}

// GetInvoiceByOrder retorna a fatura do pedido com itens, pagamentos e saldo
func (uc *BillingUseCase) GetInvoiceByOrder(ctx context.Context, orderID int64) (*InvoiceLedger, error) {
	summary, err := uc.repository.GetInvoiceByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := uc.repository.ListInvoiceItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.repository.ListPaymentsByInvoice(ctx, summary.ID)
	if err != nil {
		return nil, err
	}

	totalPaid := decimal.Zero
	for _, payment := range payments {
		totalPaid = totalPaid.Add(payment.Amount)
	}

	return &InvoiceLedger{
		InvoiceSummary:   *summary,
		Items:            items,
		Payments:         payments,
		TotalPaid:        totalPaid,
		RemainingBalance: summary.TotalAmount.Sub(totalPaid),
	}, nil
}

// ListProducts retorna o catálogo consumido pelo dashboard de pedidos
func (uc *BillingUseCase) ListProducts(ctx context.Context) ([]Product, error) {
	return uc.repository.ListProducts(ctx)
}

// GetProduct retorna um produto pelo id
func (uc *BillingUseCase) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	return uc.repository.GetProduct(ctx, productID)
}

// publishOrderCreated emite o evento pós-commit; falha de publicação não desfaz o pedido
func (uc *BillingUseCase) publishOrderCreated(ctx context.Context, order *Order, invoice *Invoice) {
	event := NewOrderCreatedEvent(order, invoice)
	if err := uc.events.PublishOrderCreated(ctx, event); err != nil {
		uc.logger.Warn("⚠️ failed to publish order.created event",
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
	}
}

// publishInvoicePaid emite o evento pós-commit; falha de publicação não desfaz o pagamento
func (uc *BillingUseCase) publishInvoicePaid(ctx context.Context, invoice *Invoice, totalPaid decimal.Decimal) {
	event := NewInvoicePaidEvent(invoice, totalPaid)
	if err := uc.events.PublishInvoicePaid(ctx, event); err != nil {
		uc.logger.Warn("⚠️ failed to publish invoice.paid event",
			zap.String("invoice_id", invoice.InvoiceID),
			zap.Error(err),
		)
	}
}
