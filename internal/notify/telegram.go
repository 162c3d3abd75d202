package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

// TelegramNotifier implements Notifier via the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramNotifier creates a new TelegramNotifier.
func NewTelegramNotifier(botToken, chatID string, opts ...TelegramOption) *TelegramNotifier {
	t := &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultTelegramBaseURL,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithTelegramBaseURL overrides the Bot API endpoint, for tests.
func WithTelegramBaseURL(u string) TelegramOption {
	return func(t *TelegramNotifier) {
		t.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTelegramHTTPClient sets a custom HTTP client.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(t *TelegramNotifier) {
		t.client = c
	}
}

// SendDeal sends a single deal as a Telegram message.
func (t *TelegramNotifier) SendDeal(ctx context.Context, alert DealAlert) error {
	return t.sendMessage(ctx, renderDeal(&alert))
}

// SendDealBatch sends multiple deals as one message.
func (t *TelegramNotifier) SendDealBatch(ctx context.Context, alerts []DealAlert) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d deals found\n", len(alerts))
	for i := range alerts {
		b.WriteString("\n")
		b.WriteString(renderDeal(&alerts[i]))
		b.WriteString("\n")
	}
	return t.sendMessage(ctx, b.String())
}

func renderDeal(alert *DealAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deal Alert: %s\n", alert.Title)
	fmt.Fprintf(&b, "Brand: %s\n", alert.Brand)
	fmt.Fprintf(&b, "Price: %s (was %s)\n",
		formatPrice(alert.CurrentPrice), formatPrice(alert.MaxPrice))
	fmt.Fprintf(&b, "Drop: %s\n", formatPercent(alert.PriceDropPercent))
	if alert.AvgSoldPrice != nil {
		fmt.Fprintf(&b, "Avg Sold: %s\n", formatPrice(*alert.AvgSoldPrice))
	}
	if alert.PotentialProfitPercent != nil {
		fmt.Fprintf(&b, "Profit: %s\n", formatPercent(*alert.PotentialProfitPercent))
	}
	b.WriteString(alert.URL)
	return b.String()
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram returned %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return fmt.Errorf("telegram returned ok=false")
	}

	return nil
}
