package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// StockAlertNotifier avisa um webhook externo quando o estoque de um produto
// cai até o limiar após um pedido. Sem URL configurada o notificador fica inerte.
type StockAlertNotifier struct {
	client     *resty.Client
	webhookURL string
	threshold  int
}

// StockAlert é o corpo enviado ao webhook
type StockAlert struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
}

// NewStockAlertNotifier cria uma nova instância de StockAlertNotifier
func NewStockAlertNotifier(webhookURL string, threshold int) *StockAlertNotifier {
	return &StockAlertNotifier{
		client:     resty.New().SetTimeout(5 * time.Second),
		webhookURL: webhookURL,
		threshold:  threshold,
	}
}

// ShouldAlert decide se o estoque restante dispara um aviso
func (n *StockAlertNotifier) ShouldAlert(remainingStock int) bool {
	return n.webhookURL != "" && remainingStock <= n.threshold
}

// Alert envia o aviso de estoque baixo; falhas só são logadas, nunca
// interrompem o fluxo do pedido já commitado.
func (n *StockAlertNotifier) Alert(ctx context.Context, product Product, logger *zap.Logger) {
	if n.webhookURL == "" {
		return
	}

	alert := StockAlert{
		ProductID:   product.ID,
		ProductName: product.Name,
		Stock:       product.Stock,
		Threshold:   n.threshold,
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(alert).
		Post(n.webhookURL)
	if err != nil {
		logger.Warn("⚠️ failed to send low stock alert",
			zap.String("product", product.Name),
			zap.Error(err),
		)
		return
	}

	if resp.IsError() {
		logger.Warn("⚠️ low stock webhook returned error",
			zap.String("product", product.Name),
			zap.Error(fmt.Errorf("webhook status %d", resp.StatusCode())),
		)
		return
	}

	logger.Info("📉 low stock alert sent",
		zap.String("product", product.Name),
		zap.Int("stock", product.Stock),
	)
}
