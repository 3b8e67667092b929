// Package notifier sends a summary email for matched listings through the
// Resend HTTP API. Notifications are an optional extra: failures are logged
// by the caller and never affect the run result.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"listing-scout/config"
	"listing-scout/internal/listing"
)

const defaultResendBaseURL = "https://api.resend.com"

// Match is one matched listing attributed to the product it was searched for.
type Match struct {
	ProductName string
	Listing     listing.Evaluated
}

type Resend struct {
	apiKey  string
	toEmail string
	url     string

	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewResend returns nil when RESEND_API_KEY or NOTIFY_EMAIL is unset;
// notifications are simply disabled then.
func NewResend(cfg *config.Config, logger *zap.SugaredLogger) *Resend {
	if strings.TrimSpace(cfg.ResendAPIKey) == "" || strings.TrimSpace(cfg.NotifyEmail) == "" {
		logger.Infow("email notifications disabled (missing RESEND_API_KEY/NOTIFY_EMAIL)")
		return nil
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.ResendBaseURL), "/")
	if base == "" {
		base = defaultResendBaseURL
	}
	return &Resend{
		apiKey:     cfg.ResendAPIKey,
		toEmail:    cfg.NotifyEmail,
		url:        base + "/emails",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (r *Resend) Send(ctx context.Context, subject, body string) error {
	payload, err := json.Marshal(sendRequest{
		From:    "Listing Scout <onboarding@resend.dev>",
		To:      []string{r.toEmail},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create resend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	r.logger.Infow("notification_sent", "to", r.toEmail, "subject", subject)
	return nil
}

// NotifyMatches sends one summary email for all matches of a run. Sending
// nothing for an empty match set is a success.
func (r *Resend) NotifyMatches(ctx context.Context, matches []Match) error {
	if len(matches) == 0 {
		return nil
	}

	plural := ""
	if len(matches) > 1 {
		plural = "es"
	}
	subject := fmt.Sprintf("Listing Scout -- %d match%s found", len(matches), plural)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matching listing%s!\n", len(matches), strings.TrimPrefix(plural, "e"))

	for i, m := range matches {
		confidence, reason := "N/A", "N/A"
		if v := m.Listing.Verdict; v != nil {
			confidence = v.Confidence
			reason = v.Reason
		}
		fmt.Fprintf(&b, `
---
Match %d: %s

Title: %s
Price: %s
Confidence: %s
Reason: %s

View listing: %s
`, i+1, m.ProductName, orNA(m.Listing.Listing.Title), orNA(m.Listing.Listing.Price), confidence, reason, m.Listing.Listing.URL)
	}

	return r.Send(ctx, subject, b.String())
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
