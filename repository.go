package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BillingRepository define a interface para operações de banco de dados do faturamento
type BillingRepository interface {
	BeginTx(ctx context.Context) (Tx, error)

	// NextSequence incrementa e retorna o contador nomeado de forma atômica.
	// Na primeira alocação o contador é semeado com seed (último número legado).
	NextSequence(ctx context.Context, tx Tx, name string, seed int64) (int64, error)
	LastOrderIdentifier(ctx context.Context, tx Tx) (string, error)
	LastInvoiceIdentifier(ctx context.Context, tx Tx) (string, error)
	LastCustomerIdentifier(ctx context.Context, tx Tx) (string, error)

	GetProductForUpdate(ctx context.Context, tx Tx, productID int64) (*Product, error)
	DecreaseStock(ctx context.Context, tx Tx, productID int64, quantity int) error

	InsertOrder(ctx context.Context, tx Tx, order *Order) error
	InsertOrderItem(ctx context.Context, tx Tx, item *OrderItem) error
	OrderItemsTotal(ctx context.Context, tx Tx, orderID int64) (decimal.Decimal, error)

	HasInvoiceForOrder(ctx context.Context, tx Tx, orderID int64) (bool, error)
	InsertInvoice(ctx context.Context, tx Tx, invoice *Invoice) error
	GetInvoiceByNumberForUpdate(ctx context.Context, tx Tx, invoiceNumber string) (*Invoice, error)

	InsertPayment(ctx context.Context, tx Tx, payment *Payment) error
	TotalPaid(ctx context.Context, tx Tx, invoiceID int64) (decimal.Decimal, error)
	MarkInvoicePaid(ctx context.Context, tx Tx, invoiceID int64) error

	DeleteOrderCascade(ctx context.Context, tx Tx, orderID int64) error
	DeleteInvoiceCascade(ctx context.Context, tx Tx, invoiceID int64) error

	ListOrders(ctx context.Context) ([]OrderSummary, error)
	GetOrderWithInvoice(ctx context.Context, orderID int64) (*OrderDetails, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error)
	ListInvoices(ctx context.Context) ([]InvoiceSummary, error)
	GetInvoice(ctx context.Context, invoiceID int64) (*InvoiceSummary, error)
	GetInvoiceByOrder(ctx context.Context, orderID int64) (*InvoiceSummary, error)
	ListInvoiceItems(ctx context.Context, orderID int64) ([]InvoiceLineItem, error)
	ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error)
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID int64) (*Product, error)
}

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
}

// PostgresTx implementa a interface Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

// PostgresBillingRepository implementa BillingRepository usando PostgreSQL
type PostgresBillingRepository struct {
	db *pgxpool.Pool
}

// NewBillingRepository cria uma nova instância de PostgresBillingRepository
func NewBillingRepository(db *pgxpool.Pool) BillingRepository {
	return &PostgresBillingRepository{
		db: db,
	}
}

// BeginTx inicia uma nova transação
func (r *PostgresBillingRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PostgresTx{tx: tx}, nil
}

// NextSequence incrementa o contador nomeado e retorna o novo valor.
// O upsert segura o lock da linha até o fim da transação, serializando
// alocações concorrentes do mesmo contador.
func (r *PostgresBillingRepository) NextSequence(ctx context.Context, tx Tx, name string, seed int64) (int64, error) {
	pgTx := tx.(*PostgresTx).tx

	query := `
		INSERT INTO sequences (name, value)
		VALUES ($1, $2 + 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := pgTx.QueryRow(ctx, query, name, seed).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}

	return value, nil
}

// LastOrderIdentifier retorna o order_id mais recente ("" quando não há pedidos)
func (r *PostgresBillingRepository) LastOrderIdentifier(ctx context.Context, tx Tx) (string, error) {
	return r.lastIdentifier(ctx, tx, `SELECT order_id FROM orders ORDER BY id DESC LIMIT 1`)
}

// LastInvoiceIdentifier retorna o invoice_id mais recente ("" quando não há faturas)
func (r *PostgresBillingRepository) LastInvoiceIdentifier(ctx context.Context, tx Tx) (string, error) {
	return r.lastIdentifier(ctx, tx, `SELECT invoice_id FROM invoices ORDER BY id DESC LIMIT 1`)
}

// LastCustomerIdentifier retorna o customer_id mais recente ("" quando não há pedidos)
func (r *PostgresBillingRepository) LastCustomerIdentifier(ctx context.Context, tx Tx) (string, error) {
	return r.lastIdentifier(ctx, tx, `SELECT customer_id FROM orders ORDER BY id DESC LIMIT 1`)
}

func (r *PostgresBillingRepository) lastIdentifier(ctx context.Context, tx Tx, query string) (string, error) {
	pgTx := tx.(*PostgresTx).tx

	var identifier string
	err := pgTx.QueryRow(ctx, query).Scan(&identifier)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return identifier, nil
}

// GetProductForUpdate obtém o produto com lock pessimista (FOR UPDATE)
func (r *PostgresBillingRepository) GetProductForUpdate(ctx context.Context, tx Tx, productID int64) (*Product, error) {
	pgTx := tx.(*PostgresTx).tx

	query := `
		SELECT id, name, price, stock, description, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var product Product
	err := pgTx.QueryRow(ctx, query, productID).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Stock,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NewNotFoundError("product with ID %d not found", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product with lock: %w", err)
	}

	return &product, nil
}

// DecreaseStock diminui o estoque do produto pela quantidade pedida
func (r *PostgresBillingRepository) DecreaseStock(ctx context.Context, tx Tx, productID int64, quantity int) error {
	pgTx := tx.(*PostgresTx).tx

	query := `
		UPDATE products
		SET stock = stock - $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	if _, err := pgTx.Exec(ctx, query, quantity, productID); err != nil {
		return fmt.Errorf("failed to decrease stock: %w", err)
	}

	return nil
}

// InsertOrder insere o cabeçalho do pedido e preenche o id substituto
func (r *PostgresBillingRepository) InsertOrder(ctx context.Context, tx Tx, order *Order) error {
	pgTx := tx.(*PostgresTx).tx

	query := `
		INSERT INTO orders (order_id, customer_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := pgTx.QueryRow(ctx, query, order.OrderID, order.CustomerID, order.CreatedAt).Scan(&order.ID); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// InsertOrderItem insere uma linha de pedido com o total já derivado
func (r *PostgresBillingRepository) InsertOrderItem(ctx context.Context, tx Tx, item *OrderItem) error {
	pgTx := tx.(*PostgresTx).tx

	query := `
		INSERT INTO order_items (order_id, product_id, item_type, quantity, price, deposit, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := pgTx.QueryRow(ctx, query,
		item.OrderID, item.ProductID, item.ItemType, item.Quantity, item.Price, item.Deposit, item.Total,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

// OrderItemsTotal soma os totais das linhas do pedido
func (r *PostgresBillingRepository) OrderItemsTotal(ctx context.Context, tx Tx, orderID int64) (decimal.Decimal, error) {
	pgTx := tx.(*PostgresTx).tx

	var total decimal.Decimal
	err := pgTx.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM order_items WHERE order_id = $1`,
		orderID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum order items: %w", err)
	}

	return total, nil
}

// HasInvoiceForOrder verifica se o pedido já possui fatura
func (r *PostgresBillingRepository) HasInvoiceForOrder(ctx context.Context, tx Tx, orderID int64) (bool, error) {
	pgTx := tx.(*PostgresTx).tx

	var exists bool
	err := pgTx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM invoices WHERE order_id = $1)`,
		orderID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// InsertInvoice insere a fatura e preenche o id substituto
func (r *PostgresBillingRepository) InsertInvoice(ctx context.Context, tx Tx, invoice *Invoice) error {
	pgTx := tx.(*PostgresTx).tx

	query := `
		INSERT INTO invoices (invoice_id, order_id, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := pgTx.QueryRow(ctx, query,
		invoice.InvoiceID, invoice.OrderID, invoice.TotalAmount, invoice.Status, invoice.CreatedAt,
	).Scan(&invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

// GetInvoiceByNumberForUpdate resolve a fatura pelo identificador legível com lock pessimista
func (r *PostgresBillingRepository) GetInvoiceByNumberForUpdate(ctx context.Context, tx Tx, invoiceNumber string) (*Invoice, error) {
	pgTx := tx.(*PostgresTx).tx

	query := `
		SELECT id, invoice_id, order_id, total_amount, status, created_at
		FROM invoices
		WHERE invoice_id = $1
		FOR UPDATE
	`

	var invoice Invoice
	err := pgTx.QueryRow(ctx, query, invoiceNumber).Scan(
		&invoice.ID,
		&invoice.InvoiceID,
		&invoice.OrderID,
		&invoice.TotalAmount,
		&invoice.Status,
		&invoice.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NewNotFoundError("invoice %s not found", invoiceNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice with lock: %w", err)
	}

	return &invoice, nil
}

// InsertPayment registra um pagamento no ledger (append-only)
func (r *PostgresBillingRepository) InsertPayment(ctx context.Context, tx Tx, payment *Payment) error {
	pgTx := tx.(*PostgresTx).tx

	query := `
		INSERT INTO payments (invoice_id, amount, method, amount_paid, change_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := pgTx.QueryRow(ctx, query,
		payment.InvoiceID, payment.Amount, payment.Method, payment.AmountPaid, payment.ChangeAmount, payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// TotalPaid soma todos os pagamentos registrados contra a fatura
func (r *PostgresBillingRepository) TotalPaid(ctx context.Context, tx Tx, invoiceID int64) (decimal.Decimal, error) {
	pgTx := tx.(*PostgresTx).tx

	var total decimal.Decimal
	err := pgTx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`,
		invoiceID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}

	return total, nil
}

// MarkInvoicePaid transiciona a fatura para paga
func (r *PostgresBillingRepository) MarkInvoicePaid(ctx context.Context, tx Tx, invoiceID int64) error {
	pgTx := tx.(*PostgresTx).tx

	query := `
		UPDATE invoices
		SET status = $1
		WHERE id = $2 AND status != $1
	`

	if _, err := pgTx.Exec(ctx, query, InvoiceStatusPaid, invoiceID); err != nil {
		return fmt.Errorf("failed to mark invoice as paid: %w", err)
	}

	return nil
}

// DeleteOrderCascade remove o pedido e todos os dados dependentes
// (pagamentos -> faturas -> linhas -> pedido), na mesma transação.
func (r *PostgresBillingRepository) DeleteOrderCascade(ctx context.Context, tx Tx, orderID int64) error {
	pgTx := tx.(*PostgresTx).tx

	var exists bool
	if err := pgTx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return NewNotFoundError("order with ID %d not found", orderID)
	}

	statements := []string{
		`DELETE FROM payments WHERE invoice_id IN (SELECT id FROM invoices WHERE order_id = $1)`,
		`DELETE FROM invoices WHERE order_id = $1`,
		`DELETE FROM order_items WHERE order_id = $1`,
		`DELETE FROM orders WHERE id = $1`,
	}

	for _, statement := range statements {
		if _, err := pgTx.Exec(ctx, statement, orderID); err != nil {
			return fmt.Errorf("failed to delete order %d: %w", orderID, err)
		}
	}

	return nil
}

// DeleteInvoiceCascade remove a fatura e seus pagamentos na mesma transação
func (r *PostgresBillingRepository) DeleteInvoiceCascade(ctx context.Context, tx Tx, invoiceID int64) error {
	pgTx := tx.(*PostgresTx).tx

	var exists bool
	if err := pgTx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invoices WHERE id = $1)`, invoiceID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return NewNotFoundError("invoice with ID %d not found", invoiceID)
	}

	if _, err := pgTx.Exec(ctx, `DELETE FROM payments WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("failed to delete payments for invoice %d: %w", invoiceID, err)
	}

	if _, err := pgTx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, invoiceID); err != nil {
		return fmt.Errorf("failed to delete invoice %d: %w", invoiceID, err)
	}

	return nil
}

// ListOrders retorna os pedidos com agregados de linhas e fatura
func (r *PostgresBillingRepository) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	query := `
		SELECT o.id, o.order_id, o.customer_id, o.created_at,
		       COUNT(oi.id),
		       COALESCE(SUM(oi.total), 0),
		       COALESCE(MAX(i.status), ''),
		       COALESCE(MAX(i.invoice_id), '')
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN invoices i ON o.id = i.order_id
		GROUP BY o.id
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []OrderSummary{}
	for rows.Next() {
		var summary OrderSummary
		err := rows.Scan(
			&summary.ID,
			&summary.OrderID,
			&summary.CustomerID,
			&summary.CreatedAt,
			&summary.TotalItems,
			&summary.OrderTotal,
			&summary.InvoiceStatus,
			&summary.InvoiceID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		orders = append(orders, summary)
	}

	return orders, rows.Err()
}

// GetOrderWithInvoice retorna o cabeçalho do pedido com os campos da fatura
func (r *PostgresBillingRepository) GetOrderWithInvoice(ctx context.Context, orderID int64) (*OrderDetails, error) {
	query := `
		SELECT o.id, o.order_id, o.customer_id, o.created_at,
		       COALESCE(i.total_amount, 0),
		       COALESCE(i.status, '')
		FROM orders o
		LEFT JOIN invoices i ON o.id = i.order_id
		WHERE o.id = $1
	`

	var details OrderDetails
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&details.ID,
		&details.OrderID,
		&details.CustomerID,
		&details.CreatedAt,
		&details.TotalAmount,
		&details.PaymentStatus,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NewNotFoundError("order with ID %d not found", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &details, nil
}

// ListOrderItems retorna as linhas de um pedido
func (r *PostgresBillingRepository) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, item_type, quantity, price, deposit, total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ItemType,
			&item.Quantity, &item.Price, &item.Deposit, &item.Total,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListPaymentsByOrder retorna os pagamentos vinculados à fatura do pedido
func (r *PostgresBillingRepository) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	query := `
		SELECT p.id, p.invoice_id, p.amount, p.method, p.amount_paid, p.change_amount, p.created_at
		FROM payments p
		JOIN invoices i ON p.invoice_id = i.id
		WHERE i.order_id = $1
		ORDER BY p.created_at
	`

	return r.scanPayments(ctx, query, orderID)
}

// ListInvoices retorna as faturas com os identificadores do pedido
func (r *PostgresBillingRepository) ListInvoices(ctx context.Context) ([]InvoiceSummary, error) {
	query := `
		SELECT i.id, i.invoice_id, o.order_id, o.customer_id, i.total_amount, i.status, i.created_at
		FROM invoices i
		JOIN orders o ON i.order_id = o.id
		ORDER BY i.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []InvoiceSummary{}
	for rows.Next() {
		var summary InvoiceSummary
		err := rows.Scan(
			&summary.ID, &summary.InvoiceID, &summary.OrderID, &summary.CustomerID,
			&summary.TotalAmount, &summary.Status, &summary.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice summary: %w", err)
		}
		invoices = append(invoices, summary)
	}

	return invoices, rows.Err()
}

// GetInvoice retorna uma fatura pelo id substituto
func (r *PostgresBillingRepository) GetInvoice(ctx context.Context, invoiceID int64) (*InvoiceSummary, error) {
	query := `
		SELECT i.id, i.invoice_id, o.order_id, o.customer_id, i.total_amount, i.status, i.created_at
		FROM invoices i
		JOIN orders o ON i.order_id = o.id
		WHERE i.id = $1
	`

	return r.scanInvoiceSummary(ctx, query, invoiceID, fmt.Sprintf("invoice with ID %d not found", invoiceID))
}

// GetInvoiceByOrder retorna a fatura vinculada a um pedido
func (r *PostgresBillingRepository) GetInvoiceByOrder(ctx context.Context, orderID int64) (*InvoiceSummary, error) {
	query := `
		SELECT i.id, i.invoice_id, o.order_id, o.customer_id, i.total_amount, i.status, i.created_at
		FROM invoices i
		JOIN orders o ON i.order_id = o.id
		WHERE i.order_id = $1
	`

	return r.scanInvoiceSummary(ctx, query, orderID, fmt.Sprintf("invoice not found for order %d", orderID))
}

func (r *PostgresBillingRepository) scanInvoiceSummary(ctx context.Context, query string, arg any, notFoundMsg string) (*InvoiceSummary, error) {
	var summary InvoiceSummary
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&summary.ID, &summary.InvoiceID, &summary.OrderID, &summary.CustomerID,
		&summary.TotalAmount, &summary.Status, &summary.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &DomainError{Kind: KindNotFound, Message: notFoundMsg}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &summary, nil
}

// ListInvoiceItems retorna as linhas do pedido com o nome do produto
func (r *PostgresBillingRepository) ListInvoiceItems(ctx context.Context, orderID int64) ([]InvoiceLineItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.item_type, oi.quantity, oi.price, oi.deposit, oi.total,
		       COALESCE(p.name, '')
		FROM order_items oi
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	defer rows.Close()

	items := []InvoiceLineItem{}
	for rows.Next() {
		var item InvoiceLineItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ItemType,
			&item.Quantity, &item.Price, &item.Deposit, &item.Total,
			&item.ItemName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListPaymentsByInvoice retorna os pagamentos de uma fatura em ordem cronológica
func (r *PostgresBillingRepository) ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error) {
	query := `
		SELECT id, invoice_id, amount, method, amount_paid, change_amount, created_at
		FROM payments
		WHERE invoice_id = $1
		ORDER BY created_at
	`

	return r.scanPayments(ctx, query, invoiceID)
}

func (r *PostgresBillingRepository) scanPayments(ctx context.Context, query string, arg any) ([]Payment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []Payment{}
	for rows.Next() {
		var payment Payment
		err := rows.Scan(
			&payment.ID, &payment.InvoiceID, &payment.Amount, &payment.Method,
			&payment.AmountPaid, &payment.ChangeAmount, &payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// ListProducts retorna o catálogo de produtos
func (r *PostgresBillingRepository) ListProducts(ctx context.Context) ([]Product, error) {
	query := `
		SELECT id, name, price, stock, description, created_at, updated_at
		FROM products
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var product Product
		err := rows.Scan(
			&product.ID, &product.Name, &product.Price, &product.Stock,
			&product.Description, &product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

// GetProduct retorna um produto pelo id
func (r *PostgresBillingRepository) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	query := `
		SELECT id, name, price, stock, description, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product Product
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&product.ID, &product.Name, &product.Price, &product.Stock,
		&product.Description, &product.CreatedAt, &product.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NewNotFoundError("product with ID %d not found", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}
