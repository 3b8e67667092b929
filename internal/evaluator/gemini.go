package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"listing-scout/config"
	"listing-scout/internal/listing"
)

type GeminiConfig struct {
	APIKey   string
	Model    string
	BaseURL  string
	Interval time.Duration
	Logger   *zap.SugaredLogger
}

// Gemini calls the generateContent REST endpoint once per listing. Calls are
// paced by a rate limiter so a long listing list stays under API quota.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string

	httpClient *http.Client
	limiter    *rate.Limiter
	validate   *validator.Validate
	logger     *zap.SugaredLogger
}

func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required (get one from https://aistudio.google.com/apikey)")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Interval), 1)
	}

	return &Gemini{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    limiter,
		validate:   validator.New(),
		logger:     cfg.Logger,
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Evaluate(ctx context.Context, product config.Product, l listing.Listing) (listing.Verdict, error) {
	if !l.Evaluable() {
		return listing.Verdict{
			IsMatch:    false,
			Confidence: "high",
			Reason:     "No title or description available",
		}, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return listing.Verdict{}, err
	}

	start := time.Now()
	g.logger.Infow("eval_started", "tool", g.Name(), "product", product.Name, "url", l.URL)

	text, err := g.generateContent(ctx, buildPrompt(product, l))
	if err != nil {
		g.logger.Errorw("eval_failed",
			"tool", g.Name(),
			"url", l.URL,
			"duration", time.Since(start).Round(time.Millisecond).String(),
			"err", err,
		)
		return listing.Verdict{}, err
	}

	verdict, err := parseVerdict(text, g.validate)
	if err != nil {
		return listing.Verdict{}, fmt.Errorf("gemini returned an invalid verdict: %w", err)
	}

	g.logger.Infow("eval_finished",
		"tool", g.Name(),
		"url", l.URL,
		"is_match", verdict.IsMatch,
		"confidence", verdict.Confidence,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return verdict, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *Gemini) generateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini API error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func parseVerdict(raw string, validate *validator.Validate) (listing.Verdict, error) {
	extracted, err := extractFirstJSONObject(raw)
	if err != nil {
		return listing.Verdict{}, err
	}

	var v listing.Verdict
	if err := json.Unmarshal([]byte(extracted), &v); err != nil {
		return listing.Verdict{}, err
	}
	if err := validate.Struct(v); err != nil {
		return listing.Verdict{}, fmt.Errorf("verdict contract validation failed: %w", err)
	}
	return v, nil
}

var _ Evaluator = (*Gemini)(nil)
