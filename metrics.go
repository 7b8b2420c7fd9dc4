package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores de negócio expostos em /metrics
var (
	ordersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_orders_created_total",
		Help: "Total de pedidos criados com sucesso (pedido + fatura commitados).",
	})

	paymentsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_payments_recorded_total",
		Help: "Total de pagamentos registrados no ledger.",
	})

	invoicesPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_invoices_paid_total",
		Help: "Total de faturas que transicionaram para o status paid.",
	})

	paymentAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "billing_payment_amount",
		Help:    "Distribuição dos valores de pagamento registrados.",
		Buckets: prometheus.ExponentialBuckets(1, 2.5, 10),
	})
)
