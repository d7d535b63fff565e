package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"craftly-be/internal/logger"
	"craftly-be/internal/order"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.telegram.org"

// TelegramNotifier delivers a human-readable order summary to a Telegram
// chat. Missing credentials make every dispatch a silent no-op; a failure is
// reported as false and never as an error past this boundary.
type TelegramNotifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
	baseURL    string
}

func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	if botToken == "" || chatID == "" {
		logger.L().Info("telegram credentials absent, order notifications disabled")
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

func (n *TelegramNotifier) OrderCreated(ctx context.Context, o *order.Order) bool {
	if n.botToken == "" || n.chatID == "" {
		return true
	}

	log := logger.L().With(
		zap.String("order_id", o.ID),
		zap.String("number", o.Number),
	)

	body, err := json.Marshal(map[string]any{
		"chat_id": n.chatID,
		"text":    FormatOrderSummary(o),
	})
	if err != nil {
		log.Error("failed to marshal notification payload", zap.Error(err))
		return false
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		log.Error("failed to build notification request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Error("notification request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		log.Error("notification sink returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBody),
		)
		return false
	}

	log.Info("order notification delivered")
	return true
}

// FormatOrderSummary renders the message sent to the sink: customer, items,
// total, shipping address and method.
func FormatOrderSummary(o *order.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order %s\n", o.Number)

	if o.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", o.CustomerName)
	}
	if o.CustomerPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", o.CustomerPhone)
	}

	b.WriteString("\nItems:\n")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "- %s x%d = %s\n", item.Name, item.Qty, formatAmount(item.Total, o.Currency))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", formatAmount(o.Total, o.Currency))

	if addr := o.ShippingAddress(); addr != nil {
		fmt.Fprintf(&b, "Ship to: %s, %s %s, %s\n", addr.Line1, addr.Postal, addr.City, addr.Country)
	}
	if o.ShippingMethod != "" {
		fmt.Fprintf(&b, "Shipping: %s\n", o.ShippingMethod)
	}

	return b.String()
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, currency)
}
