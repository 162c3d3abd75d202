package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	colorGreen  = 0x2ECC71 // drop 25%+
	colorYellow = 0xF1C40F // drop 15-25%
	colorOrange = 0xE67E22 // everything else
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Thumbnail   *discordThumbnail   `json:"thumbnail,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// SendDeal sends a single deal as a Discord embed.
func (d *DiscordNotifier) SendDeal(ctx context.Context, alert DealAlert) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(&alert)},
	}
	return d.post(ctx, payload)
}

// SendDealBatch sends multiple deals as a single Discord message.
func (d *DiscordNotifier) SendDealBatch(ctx context.Context, alerts []DealAlert) error {
	embeds := make([]discordEmbed, 0, len(alerts))

	// Discord allows max 10 embeds per message.
	limit := min(len(alerts), 10)

	for i := range limit {
		embeds = append(embeds, buildEmbed(&alerts[i]))
	}

	if len(alerts) > 10 {
		embeds = append(embeds, discordEmbed{
			Title:       fmt.Sprintf("... and %d more deals", len(alerts)-10),
			Color:       colorYellow,
			Description: "Check the API for the full list.",
		})
	}

	payload := discordWebhookPayload{Embeds: embeds}
	return d.post(ctx, payload)
}

func buildEmbed(alert *DealAlert) discordEmbed {
	fields := []discordEmbedField{
		{Name: "Brand", Value: alert.Brand, Inline: true},
		{Name: "Price", Value: formatPrice(alert.CurrentPrice), Inline: true},
		{Name: "Was", Value: formatPrice(alert.MaxPrice), Inline: true},
		{Name: "Drop", Value: formatPercent(alert.PriceDropPercent), Inline: true},
	}

	if alert.AvgSoldPrice != nil {
		fields = append(fields, discordEmbedField{
			Name: "Avg Sold", Value: formatPrice(*alert.AvgSoldPrice), Inline: true,
		})
	}
	if alert.PotentialProfitPercent != nil {
		fields = append(fields, discordEmbedField{
			Name: "Profit", Value: formatPercent(*alert.PotentialProfitPercent), Inline: true,
		})
	}

	embed := discordEmbed{
		Title:  fmt.Sprintf("Deal Alert: %s", alert.Title),
		URL:    alert.URL,
		Color:  dropColor(alert.PriceDropPercent),
		Fields: fields,
	}

	if alert.ImageURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: alert.ImageURL}
	}

	return embed
}

func dropColor(dropPercent float64) int {
	switch {
	case dropPercent >= 25:
		return colorGreen
	case dropPercent >= 15:
		return colorYellow
	default:
		return colorOrange
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
