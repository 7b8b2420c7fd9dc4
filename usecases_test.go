package main

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockTx simula uma transação do banco
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockBillingRepository simula o repositório para testes sem banco real
type MockBillingRepository struct {
	mock.Mock
}

func (m *MockBillingRepository) BeginTx(ctx context.Context) (Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Tx), args.Error(1)
}

func (m *MockBillingRepository) NextSequence(ctx context.Context, tx Tx, name string, seed int64) (int64, error) {
	args := m.Called(ctx, tx, name, seed)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillingRepository) LastOrderIdentifier(ctx context.Context, tx Tx) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *MockBillingRepository) LastInvoiceIdentifier(ctx context.Context, tx Tx) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *MockBillingRepository) LastCustomerIdentifier(ctx context.Context, tx Tx) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *MockBillingRepository) GetProductForUpdate(ctx context.Context, tx Tx, productID int64) (*Product, error) {
	args := m.Called(ctx, tx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockBillingRepository) DecreaseStock(ctx context.Context, tx Tx, productID int64, quantity int) error {
	args := m.Called(ctx, tx, productID, quantity)
	return args.Error(0)
}

func (m *MockBillingRepository) InsertOrder(ctx context.Context, tx Tx, order *Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockBillingRepository) InsertOrderItem(ctx context.Context, tx Tx, item *OrderItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockBillingRepository) OrderItemsTotal(ctx context.Context, tx Tx, orderID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBillingRepository) HasInvoiceForOrder(ctx context.Context, tx Tx, orderID int64) (bool, error) {
	args := m.Called(ctx, tx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillingRepository) InsertInvoice(ctx context.Context, tx Tx, invoice *Invoice) error {
	args := m.Called(ctx, tx, invoice)
	return args.Error(0)
}

func (m *MockBillingRepository) GetInvoiceByNumberForUpdate(ctx context.Context, tx Tx, invoiceNumber string) (*Invoice, error) {
	args := m.Called(ctx, tx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invoice), args.Error(1)
}

func (m *MockBillingRepository) InsertPayment(ctx context.Context, tx Tx, payment *Payment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

func (m *MockBillingRepository) TotalPaid(ctx context.Context, tx Tx, invoiceID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBillingRepository) MarkInvoicePaid(ctx context.Context, tx Tx, invoiceID int64) error {
	args := m.Called(ctx, tx, invoiceID)
	return args.Error(0)
}

func (m *MockBillingRepository) DeleteOrderCascade(ctx context.Context, tx Tx, orderID int64) error {
	args := m.Called(ctx, tx, orderID)
	return args.Error(0)
}

func (m *MockBillingRepository) DeleteInvoiceCascade(ctx context.Context, tx Tx, invoiceID int64) error {
	args := m.Called(ctx, tx, invoiceID)
	return args.Error(0)
}

func (m *MockBillingRepository) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]OrderSummary), args.Error(1)
}

func (m *MockBillingRepository) GetOrderWithInvoice(ctx context.Context, orderID int64) (*OrderDetails, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrderDetails), args.Error(1)
}

func (m *MockBillingRepository) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]OrderItem), args.Error(1)
}

func (m *MockBillingRepository) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

func (m *MockBillingRepository) ListInvoices(ctx context.Context) ([]InvoiceSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]InvoiceSummary), args.Error(1)
}

func (m *MockBillingRepository) GetInvoice(ctx context.Context, invoiceID int64) (*InvoiceSummary, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InvoiceSummary), args.Error(1)
}

func (m *MockBillingRepository) GetInvoiceByOrder(ctx context.Context, orderID int64) (*InvoiceSummary, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InvoiceSummary), args.Error(1)
}

func (m *MockBillingRepository) ListInvoiceItems(ctx context.Context, orderID int64) ([]InvoiceLineItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]InvoiceLineItem), args.Error(1)
}

func (m *MockBillingRepository) ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

func (m *MockBillingRepository) ListProducts(ctx context.Context) ([]Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockBillingRepository) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

// MockEventPublisher simula a publicação de eventos
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishInvoicePaid(ctx context.Context, event InvoicePaidEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestUseCase(repo *MockBillingRepository, events *MockEventPublisher) *BillingUseCase {
	return NewBillingUseCase(
		repo,
		NewSequenceAllocator(repo),
		events,
		NewStockAlertNotifier("", 5), // sem webhook nos testes
		zap.NewNop(),
	)
}

func expectSequence(repo *MockBillingRepository, tx Tx, kind, lastMethod, last string, seed, next int64) {
	repo.On(lastMethod, mock.Anything, tx).Return(last, nil)
	repo.On("NextSequence", mock.Anything, tx, kind, seed).Return(next, nil)
}

func TestCreateOrder_Success(t *testing.T) {
	// Arrange: produto com estoque 5, preço 10.00, pedido de 3 unidades
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)
	ctx := context.Background()

	product := &Product{ID: 42, Name: "19L bottle", Price: decimal.RequireFromString("10.00"), Stock: 5}
	orderTotal := decimal.RequireFromString("30.00")
	customerKey := customerSequenceKey(time.Now().Year())

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	expectSequence(mockRepo, mockTx, seqOrders, "LastOrderIdentifier", "", 0, 1)
	expectSequence(mockRepo, mockTx, customerKey, "LastCustomerIdentifier", "", 0, 1)
	mockRepo.On("InsertOrder", mock.Anything, mockTx, mock.AnythingOfType("*main.Order")).
		Run(func(args mock.Arguments) { args.Get(2).(*Order).ID = 7 }).
		Return(nil)
	mockRepo.On("GetProductForUpdate", mock.Anything, mockTx, int64(42)).Return(product, nil)
	mockRepo.On("InsertOrderItem", mock.Anything, mockTx, mock.AnythingOfType("*main.OrderItem")).Return(nil)
	mockRepo.On("DecreaseStock", mock.Anything, mockTx, int64(42), 3).Return(nil)
	mockRepo.On("OrderItemsTotal", mock.Anything, mockTx, int64(7)).Return(orderTotal, nil)
	mockRepo.On("HasInvoiceForOrder", mock.Anything, mockTx, int64(7)).Return(false, nil)
	expectSequence(mockRepo, mockTx, seqInvoices, "LastInvoiceIdentifier", "", 0, 1)
	mockRepo.On("InsertInvoice", mock.Anything, mockTx, mock.AnythingOfType("*main.Invoice")).Return(nil)
	mockTx.On("Commit").Return(nil).Once()
	mockTx.On("Rollback").Return(nil).Maybe()
	mockEvents.On("PublishOrderCreated", mock.Anything, mock.AnythingOfType("OrderCreatedEvent")).Return(nil)

	// Act
	summary, err := uc.CreateOrder(ctx, CreateOrderRequest{Items: []OrderItemRequest{{
		ProductID: 42,
		ItemType:  "19L bottle",
		Quantity:  3,
		Price:     decimal.RequireFromString("10.00"),
		Deposit:   decimal.Zero,
	}}})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "ORD0001", summary.OrderID)
	assert.Equal(t, "INV0001", summary.InvoiceID)
	assert.Equal(t, InvoiceStatusPending, summary.InvoiceStatus)
	assert.True(t, summary.OrderTotal.Equal(orderTotal))
	assert.Equal(t, 1, summary.TotalItems)
	mockRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestCreateOrder_DerivesItemTotalServerSide(t *testing.T) {
	// Arrange: total enviado pelo cliente é ignorado; o servidor recalcula
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)
	ctx := context.Background()

	product := &Product{ID: 9, Name: "gallon refill", Price: decimal.RequireFromString("12.50"), Stock: 10}
	customerKey := customerSequenceKey(time.Now().Year())

	var insertedItem *OrderItem
	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	expectSequence(mockRepo, mockTx, seqOrders, "LastOrderIdentifier", "ORD0041", 41, 42)
	expectSequence(mockRepo, mockTx, customerKey, "LastCustomerIdentifier", "", 0, 12)
	mockRepo.On("InsertOrder", mock.Anything, mockTx, mock.AnythingOfType("*main.Order")).
		Run(func(args mock.Arguments) { args.Get(2).(*Order).ID = 3 }).
		Return(nil)
	mockRepo.On("GetProductForUpdate", mock.Anything, mockTx, int64(9)).Return(product, nil)
	mockRepo.On("InsertOrderItem", mock.Anything, mockTx, mock.AnythingOfType("*main.OrderItem")).
		Run(func(args mock.Arguments) { insertedItem = args.Get(2).(*OrderItem) }).
		Return(nil)
	mockRepo.On("DecreaseStock", mock.Anything, mockTx, int64(9), 2).Return(nil)
	mockRepo.On("OrderItemsTotal", mock.Anything, mockTx, int64(3)).Return(decimal.RequireFromString("20.00"), nil)
	mockRepo.On("HasInvoiceForOrder", mock.Anything, mockTx, int64(3)).Return(false, nil)
	expectSequence(mockRepo, mockTx, seqInvoices, "LastInvoiceIdentifier", "INV0041", 41, 42)
	mockRepo.On("InsertInvoice", mock.Anything, mockTx, mock.AnythingOfType("*main.Invoice")).Return(nil)
	mockTx.On("Commit").Return(nil).Once()
	mockTx.On("Rollback").Return(nil).Maybe()
	mockEvents.On("PublishOrderCreated", mock.Anything, mock.AnythingOfType("OrderCreatedEvent")).Return(nil)

	// Act
	summary, err := uc.CreateOrder(ctx, CreateOrderRequest{Items: []OrderItemRequest{{
		ProductID: 9,
		Quantity:  2,
		Price:     decimal.RequireFromString("12.50"),
		Deposit:   decimal.RequireFromString("5.00"),
		Total:     decimal.RequireFromString("999.99"), // valor adulterado
	}}})

	// Assert: quantity*price - deposit, nunca o total do cliente
	assert.NoError(t, err)
	assert.NotNil(t, insertedItem)
	assert.True(t, insertedItem.Total.Equal(decimal.RequireFromString("20.00")),
		"expected derived total 20.00, got %s", insertedItem.Total)
	assert.Equal(t, "ORD0042", summary.OrderID)
	assert.Equal(t, "INV0042", summary.InvoiceID)
	mockRepo.AssertExpectations(t)
}

func TestCreateOrder_InsufficientStockRollsBack(t *testing.T) {
	// Arrange: produto com estoque 2, pedido de 5 unidades
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)
	ctx := context.Background()

	product := &Product{ID: 42, Name: "19L bottle", Price: decimal.RequireFromString("10.00"), Stock: 2}
	customerKey := customerSequenceKey(time.Now().Year())

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	expectSequence(mockRepo, mockTx, seqOrders, "LastOrderIdentifier", "", 0, 1)
	expectSequence(mockRepo, mockTx, customerKey, "LastCustomerIdentifier", "", 0, 1)
	mockRepo.On("InsertOrder", mock.Anything, mockTx, mock.AnythingOfType("*main.Order")).Return(nil)
	mockRepo.On("GetProductForUpdate", mock.Anything, mockTx, int64(42)).Return(product, nil)
	mockTx.On("Rollback").Return(nil)

	// Act
	summary, err := uc.CreateOrder(ctx, CreateOrderRequest{Items: []OrderItemRequest{{
		ProductID: 42,
		Quantity:  5,
		Price:     decimal.RequireFromString("10.00"),
	}}})

	// Assert: conflito nomeando o produto, transação desfeita, nada persiste
	assert.Nil(t, summary)
	assert.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Contains(t, err.Error(), "insufficient stock for product 19L bottle")
	mockTx.AssertNotCalled(t, "Commit")
	mockTx.AssertCalled(t, "Rollback")
	mockRepo.AssertNotCalled(t, "InsertOrderItem", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "DecreaseStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "InsertInvoice", mock.Anything, mock.Anything, mock.Anything)
	mockEvents.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
}

func TestCreateOrder_ProductNotFoundRollsBack(t *testing.T) {
	// Arrange
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)
	ctx := context.Background()

	customerKey := customerSequenceKey(time.Now().Year())

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	expectSequence(mockRepo, mockTx, seqOrders, "LastOrderIdentifier", "", 0, 1)
	expectSequence(mockRepo, mockTx, customerKey, "LastCustomerIdentifier", "", 0, 1)
	mockRepo.On("InsertOrder", mock.Anything, mockTx, mock.AnythingOfType("*main.Order")).Return(nil)
	mockRepo.On("GetProductForUpdate", mock.Anything, mockTx, int64(99)).
		Return(nil, NewNotFoundError("product with ID %d not found", 99))
	mockTx.On("Rollback").Return(nil)

	// Act
	_, err := uc.CreateOrder(ctx, CreateOrderRequest{Items: []OrderItemRequest{{
		ProductID: 99,
		Quantity:  1,
		Price:     decimal.RequireFromString("10.00"),
	}}})

	// Assert
	assert.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	mockTx.AssertNotCalled(t, "Commit")
}

func TestCreateOrder_ValidationRejectedBeforeAnyWrite(t *testing.T) {
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	uc := newTestUseCase(mockRepo, mockEvents)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateOrderRequest
	}{
		{"no items", CreateOrderRequest{}},
		{"zero quantity", CreateOrderRequest{Items: []OrderItemRequest{{ProductID: 1, Quantity: 0}}}},
		{"negative quantity", CreateOrderRequest{Items: []OrderItemRequest{{ProductID: 1, Quantity: -2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			_, err := uc.CreateOrder(ctx, tt.req)

			// Assert: rejeitado antes de abrir transação
			assert.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			mockRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func recordPaymentFixture(t *testing.T, invoice *Invoice, totalPaidAfter decimal.Decimal, expectPaid bool) (*BillingUseCase, *MockBillingRepository, *MockEventPublisher, *MockTx) {
	t.Helper()

	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockRepo.On("GetInvoiceByNumberForUpdate", mock.Anything, mockTx, invoice.InvoiceID).Return(invoice, nil)
	mockRepo.On("InsertPayment", mock.Anything, mockTx, mock.AnythingOfType("*main.Payment")).Return(nil)
	mockRepo.On("TotalPaid", mock.Anything, mockTx, invoice.ID).Return(totalPaidAfter, nil)
	if expectPaid {
		mockRepo.On("MarkInvoicePaid", mock.Anything, mockTx, invoice.ID).Return(nil)
		mockEvents.On("PublishInvoicePaid", mock.Anything, mock.AnythingOfType("InvoicePaidEvent")).Return(nil)
	}
	mockTx.On("Commit").Return(nil).Once()
	mockTx.On("Rollback").Return(nil).Maybe()

	return uc, mockRepo, mockEvents, mockTx
}

func TestRecordPayment_PartialKeepsPending(t *testing.T) {
	// Arrange: fatura de 30.00, pagamento de 20.00 em dinheiro
	invoice := &Invoice{ID: 5, InvoiceID: "INV0001", OrderID: 7, TotalAmount: decimal.RequireFromString("30.00"), Status: InvoiceStatusPending}
	uc, mockRepo, mockEvents, _ := recordPaymentFixture(t, invoice, decimal.RequireFromString("20.00"), false)

	// Act
	result, err := uc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: "INV0001",
		Amount:    decimal.RequireFromString("20.00"),
		Method:    PaymentMethodCash,
	})

	// Assert: total_paid=20.00, remaining=10.00, status continua pending
	assert.NoError(t, err)
	assert.True(t, result.Details.TotalPaid.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, result.Details.RemainingBalance.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, InvoiceStatusPending, result.Invoice.Status)
	mockRepo.AssertNotCalled(t, "MarkInvoicePaid", mock.Anything, mock.Anything, mock.Anything)
	mockEvents.AssertNotCalled(t, "PublishInvoicePaid", mock.Anything, mock.Anything)
}

func TestRecordPayment_FinalPaymentSettlesInvoice(t *testing.T) {
	// Arrange: fatura de 30.00 com 20.00 já pagos, pagamento de 10.00 no cartão
	invoice := &Invoice{ID: 5, InvoiceID: "INV0001", OrderID: 7, TotalAmount: decimal.RequireFromString("30.00"), Status: InvoiceStatusPending}
	uc, mockRepo, mockEvents, mockTx := recordPaymentFixture(t, invoice, decimal.RequireFromString("30.00"), true)

	// Act
	result, err := uc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: "INV0001",
		Amount:    decimal.RequireFromString("10.00"),
		Method:    PaymentMethodCard,
	})

	// Assert: total_paid=30.00, remaining=0.00, status=paid
	assert.NoError(t, err)
	assert.True(t, result.Details.TotalPaid.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, result.Details.RemainingBalance.IsZero())
	assert.Equal(t, InvoiceStatusPaid, result.Invoice.Status)
	mockRepo.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestRecordPayment_OverpaymentAcceptedAndRecorded(t *testing.T) {
	// Arrange: fatura de 30.00 com 25.00 pagos; segundo pagamento de 25.00
	invoice := &Invoice{ID: 5, InvoiceID: "INV0002", OrderID: 8, TotalAmount: decimal.RequireFromString("30.00"), Status: InvoiceStatusPending}
	uc, _, _, _ := recordPaymentFixture(t, invoice, decimal.RequireFromString("50.00"), true)

	// Act
	result, err := uc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: "INV0002",
		Amount:    decimal.RequireFromString("25.00"),
		Method:    PaymentMethodCash,
	})

	// Assert: ledger aceita o excedente, saldo fica negativo
	assert.NoError(t, err)
	assert.True(t, result.Details.TotalPaid.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, result.Details.RemainingBalance.Equal(decimal.RequireFromString("-20.00")))
	assert.Equal(t, InvoiceStatusPaid, result.Invoice.Status)
}

func TestRecordPayment_AlreadyPaidRejected(t *testing.T) {
	// Arrange
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)

	invoice := &Invoice{ID: 5, InvoiceID: "INV0001", TotalAmount: decimal.RequireFromString("30.00"), Status: InvoiceStatusPaid}
	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockRepo.On("GetInvoiceByNumberForUpdate", mock.Anything, mockTx, "INV0001").Return(invoice, nil)
	mockTx.On("Rollback").Return(nil)

	// Act
	_, err := uc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: "INV0001",
		Amount:    decimal.RequireFromString("10.00"),
		Method:    PaymentMethodCash,
	})

	// Assert: conflito, nenhum pagamento inserido, transação desfeita
	assert.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Contains(t, err.Error(), "already paid")
	mockRepo.AssertNotCalled(t, "InsertPayment", mock.Anything, mock.Anything, mock.Anything)
	mockTx.AssertNotCalled(t, "Commit")
}

func TestRecordPayment_UnknownInvoice(t *testing.T) {
	// Arrange
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockRepo.On("GetInvoiceByNumberForUpdate", mock.Anything, mockTx, "INV0099").
		Return(nil, NewNotFoundError("invoice %s not found", "INV0099"))
	mockTx.On("Rollback").Return(nil)

	// Act
	_, err := uc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: "INV0099",
		Amount:    decimal.RequireFromString("10.00"),
		Method:    PaymentMethodCard,
	})

	// Assert
	assert.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	mockTx.AssertNotCalled(t, "Commit")
}

func TestRecordPayment_Validation(t *testing.T) {
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	uc := newTestUseCase(mockRepo, mockEvents)

	tests := []struct {
		name string
		req  RecordPaymentRequest
	}{
		{"missing invoice id", RecordPaymentRequest{Amount: decimal.NewFromInt(10), Method: PaymentMethodCash}},
		{"zero amount", RecordPaymentRequest{InvoiceID: "INV0001", Amount: decimal.Zero, Method: PaymentMethodCash}},
		{"negative amount", RecordPaymentRequest{InvoiceID: "INV0001", Amount: decimal.NewFromInt(-5), Method: PaymentMethodCash}},
		{"bad method", RecordPaymentRequest{InvoiceID: "INV0001", Amount: decimal.NewFromInt(10), Method: "cheque"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			_, err := uc.RecordPayment(context.Background(), tt.req)

			// Assert
			assert.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			mockRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestDeleteOrder_Transactional(t *testing.T) {
	// Arrange
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockRepo.On("DeleteOrderCascade", mock.Anything, mockTx, int64(7)).Return(nil)
	mockTx.On("Commit").Return(nil).Once()
	mockTx.On("Rollback").Return(nil).Maybe()

	// Act
	err := uc.DeleteOrder(context.Background(), 7)

	// Assert
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestDeleteInvoice_NotFoundRollsBack(t *testing.T) {
	// Arrange
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	mockTx := new(MockTx)
	uc := newTestUseCase(mockRepo, mockEvents)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockRepo.On("DeleteInvoiceCascade", mock.Anything, mockTx, int64(99)).
		Return(NewNotFoundError("invoice with ID %d not found", 99))
	mockTx.On("Rollback").Return(nil)

	// Act
	err := uc.DeleteInvoice(context.Background(), 99)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	mockTx.AssertNotCalled(t, "Commit")
}

func TestGetInvoiceByOrder_ComputesBalance(t *testing.T) {
	// Arrange: fatura de 30.00 com dois pagamentos (20.00 + 10.00)
	mockRepo := new(MockBillingRepository)
	mockEvents := new(MockEventPublisher)
	uc := newTestUseCase(mockRepo, mockEvents)
	ctx := context.Background()

	summary := &InvoiceSummary{ID: 5, InvoiceID: "INV0001", OrderID: "ORD0001", CustomerID: "CUS-2026-0001",
		TotalAmount: decimal.RequireFromString("30.00"), Status: InvoiceStatusPaid}
	payments := []Payment{
		{ID: 1, InvoiceID: 5, Amount: decimal.RequireFromString("20.00"), Method: PaymentMethodCash},
		{ID: 2, InvoiceID: 5, Amount: decimal.RequireFromString("10.00"), Method: PaymentMethodCard},
	}

	mockRepo.On("GetInvoiceByOrder", ctx, int64(7)).Return(summary, nil)
	mockRepo.On("ListInvoiceItems", ctx, int64(7)).Return([]InvoiceLineItem{}, nil)
	mockRepo.On("ListPaymentsByInvoice", ctx, int64(5)).Return(payments, nil)

	// Act
	ledger, err := uc.GetInvoiceByOrder(ctx, 7)

	// Assert: total_paid é a soma do ledger e o saldo bate com total_amount - total_paid
	assert.NoError(t, err)
	assert.True(t, ledger.TotalPaid.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, ledger.RemainingBalance.IsZero())
	mockRepo.AssertExpectations(t)
}
