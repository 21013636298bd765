package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"stakewatch/internal/analysis"
)

// Notification captures a health degradation worth paging about.
type Notification struct {
	GeneratedAt        time.Time
	StakingContract    string
	Tier               analysis.HealthTier
	PreviousTier       analysis.HealthTier
	LiquidityRisk      analysis.RiskLevel
	StakingPercentage  decimal.Decimal
	NetFlow            decimal.Decimal
	SellingPressure14d decimal.Decimal
	Channels           []string
}

// Notifier delivers health notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls the sendMessage API with the rendered text.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Time("generated_at", note.GeneratedAt).
		Str("tier", string(note.Tier)).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("health alert sent (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Staking Health Alert]\n")
	builder.WriteString(fmt.Sprintf("Contract: %s\n", note.StakingContract))
	builder.WriteString(fmt.Sprintf("Generated: %s UTC\n", note.GeneratedAt.UTC().Format(time.RFC3339)))
	if note.PreviousTier != "" && note.PreviousTier != note.Tier {
		builder.WriteString(fmt.Sprintf("Health: %s (was %s)\n", note.Tier, note.PreviousTier))
	} else {
		builder.WriteString(fmt.Sprintf("Health: %s\n", note.Tier))
	}
	builder.WriteString(fmt.Sprintf("Staked: %s%% of supply\n", note.StakingPercentage.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Net flow: %s tokens\n", note.NetFlow.StringFixed(0)))
	builder.WriteString(fmt.Sprintf("Liquidity risk: %s\n", note.LiquidityRisk))
	builder.WriteString(fmt.Sprintf("14d selling pressure: %s tokens\n", note.SellingPressure14d.StringFixed(0)))
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
