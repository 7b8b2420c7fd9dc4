package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BillingUseCaseInterface define a interface para o use case
type BillingUseCaseInterface interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderSummary, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	DeleteInvoice(ctx context.Context, invoiceID int64) error
	ListOrders(ctx context.Context) ([]OrderSummary, error)
	GetOrder(ctx context.Context, orderID int64) (*OrderDetails, error)
	ListInvoices(ctx context.Context) ([]InvoiceSummary, error)
	GetInvoice(ctx context.Context, invoiceID int64) (*InvoiceSummary, error)
	GetInvoiceByOrder(ctx context.Context, orderID int64) (*InvoiceLedger, error)
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID int64) (*Product, error)
}

// BillingHandler contém os handlers HTTP
type BillingHandler struct {
	useCase BillingUseCaseInterface
	tracer  trace.Tracer
}

// NewBillingHandler cria uma nova instância de BillingHandler
func NewBillingHandler(useCase BillingUseCaseInterface, tracer trace.Tracer) *BillingHandler {
	return &BillingHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// statusForError traduz o tipo do erro de domínio para o status HTTP
func statusForError(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *BillingHandler) fail(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

// CreateOrder cria um pedido com fatura na mesma transação
func (h *BillingHandler) CreateOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_order")
	defer span.End()

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Int("items", len(req.Items)))

	order, err := h.useCase.CreateOrder(ctx, req)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	span.SetAttributes(
		attribute.String("order_id", order.OrderID),
		attribute.String("invoice_id", order.InvoiceID),
	)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// RecordPayment registra um pagamento contra uma fatura
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "record_payment")
	defer span.End()

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("invoice_id", req.InvoiceID),
		attribute.String("method", req.Method),
	)

	result, err := h.useCase.RecordPayment(ctx, req)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Payment recorded successfully",
		"payment_details": result.Details,
		"invoice":         result.Invoice,
	})
}

// ListOrders retorna todos os pedidos com seus agregados
func (h *BillingHandler) ListOrders(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_orders")
	defer span.End()

	orders, err := h.useCase.ListOrders(ctx)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder retorna um pedido com linhas e pagamentos
func (h *BillingHandler) GetOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_order")
	defer span.End()

	orderID, ok := h.pathID(c, span, "id")
	if !ok {
		return
	}

	order, err := h.useCase.GetOrder(ctx, orderID)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeleteOrder remove um pedido e toda a cadeia dependente
func (h *BillingHandler) DeleteOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "delete_order")
	defer span.End()

	orderID, ok := h.pathID(c, span, "id")
	if !ok {
		return
	}

	if err := h.useCase.DeleteOrder(ctx, orderID); err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// ListInvoices retorna todas as faturas
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_invoices")
	defer span.End()

	invoices, err := h.useCase.ListInvoices(ctx)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retorna uma fatura pelo id
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_invoice")
	defer span.End()

	invoiceID, ok := h.pathID(c, span, "id")
	if !ok {
		return
	}

	invoice, err := h.useCase.GetInvoice(ctx, invoiceID)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// GetInvoiceByOrder retorna a fatura de um pedido com itens, pagamentos e saldo
func (h *BillingHandler) GetInvoiceByOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_invoice_by_order")
	defer span.End()

	orderID, ok := h.pathID(c, span, "orderId")
	if !ok {
		return
	}

	ledger, err := h.useCase.GetInvoiceByOrder(ctx, orderID)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, ledger)
}

// DeleteInvoice remove uma fatura e seus pagamentos
func (h *BillingHandler) DeleteInvoice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "delete_invoice")
	defer span.End()

	invoiceID, ok := h.pathID(c, span, "id")
	if !ok {
		return
	}

	if err := h.useCase.DeleteInvoice(ctx, invoiceID); err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

// ListProducts retorna o catálogo consumido pelo dashboard
func (h *BillingHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	products, err := h.useCase.ListProducts(ctx)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct retorna um produto pelo id
func (h *BillingHandler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_product")
	defer span.End()

	productID, ok := h.pathID(c, span, "id")
	if !ok {
		return
	}

	product, err := h.useCase.GetProduct(ctx, productID)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// HealthCheck verifica a saúde do serviço
func (h *BillingHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "billing-service",
	})
}

func (h *BillingHandler) pathID(c *gin.Context, span trace.Span, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid numeric identifier"})
		return 0, false
	}
	return id, true
}
