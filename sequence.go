package main

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Chaves da tabela de sequências
const (
	seqOrders   = "orders"
	seqInvoices = "invoices"
)

const (
	orderIDPrefix   = "ORD"
	invoiceIDPrefix = "INV"
)

// customerIDPattern extrai o ano e a sequência de um customer_id (CUS-YYYY-nnnn)
var customerIDPattern = regexp.MustCompile(`^CUS-(\d{4})-(\d+)$`)

// SequenceAllocator emite os identificadores legíveis de pedido, cliente e fatura.
// Os números vêm de uma tabela de contadores incrementada atomicamente dentro da
// transação corrente; o scan do último identificador emitido serve apenas como
// semente quando o contador ainda não existe (migração de dados legados).
type SequenceAllocator struct {
	repository BillingRepository
}

// NewSequenceAllocator cria uma nova instância de SequenceAllocator
func NewSequenceAllocator(repository BillingRepository) *SequenceAllocator {
	return &SequenceAllocator{repository: repository}
}

// NextOrderID emite o próximo identificador de pedido (ORDnnnn)
func (a *SequenceAllocator) NextOrderID(ctx context.Context, tx Tx) (string, error) {
	last, err := a.repository.LastOrderIdentifier(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to read last order identifier: %w", err)
	}

	next, err := a.repository.NextSequence(ctx, tx, seqOrders, parseNumericSuffix(last, orderIDPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to allocate order sequence: %w", err)
	}

	return fmt.Sprintf("%s%04d", orderIDPrefix, next), nil
}

// NextInvoiceID emite o próximo identificador de fatura (INVnnnn)
func (a *SequenceAllocator) NextInvoiceID(ctx context.Context, tx Tx) (string, error) {
	last, err := a.repository.LastInvoiceIdentifier(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to read last invoice identifier: %w", err)
	}

	next, err := a.repository.NextSequence(ctx, tx, seqInvoices, parseNumericSuffix(last, invoiceIDPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice sequence: %w", err)
	}

	return fmt.Sprintf("%s%04d", invoiceIDPrefix, next), nil
}

// NextCustomerID emite o próximo identificador de cliente (CUS-YYYY-nnnn).
// A sequência é por ano; a virada de ano começa um contador novo em 0001.
func (a *SequenceAllocator) NextCustomerID(ctx context.Context, tx Tx) (string, error) {
	year := time.Now().Year()

	last, err := a.repository.LastCustomerIdentifier(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to read last customer identifier: %w", err)
	}

	next, err := a.repository.NextSequence(ctx, tx, customerSequenceKey(year), parseCustomerSuffix(last, year))
	if err != nil {
		return "", fmt.Errorf("failed to allocate customer sequence: %w", err)
	}

	return fmt.Sprintf("CUS-%d-%04d", year, next), nil
}

func customerSequenceKey(year int) string {
	return fmt.Sprintf("customers:%d", year)
}

// parseNumericSuffix extrai o sufixo numérico de um identificador legado.
// Formato inesperado ou ausência de linhas contam como "sem número anterior" (0),
// nunca como erro.
func parseNumericSuffix(identifier, prefix string) int64 {
	if identifier == "" || !strings.HasPrefix(identifier, prefix) {
		return 0
	}

	n, err := strconv.ParseInt(strings.TrimPrefix(identifier, prefix), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseCustomerSuffix extrai a sequência de um customer_id legado do ano corrente.
// Identificadores de outros anos (ou fora do formato) seedam em 0.
func parseCustomerSuffix(identifier string, year int) int64 {
	match := customerIDPattern.FindStringSubmatch(identifier)
	if match == nil {
		return 0
	}

	if match[1] != strconv.Itoa(year) {
		return 0
	}

	n, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
