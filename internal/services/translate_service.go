package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"leon/internal/health"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Translator translates short texts such as search topics
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// LibreTranslator talks to a LibreTranslate-compatible /translate endpoint
type LibreTranslator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *OutboundLimiter
	health     *health.Service
}

// NewLibreTranslator creates a translator for the server at baseURL
func NewLibreTranslator(baseURL, apiKey string, timeout time.Duration, limiter *OutboundLimiter) *LibreTranslator {
	return &LibreTranslator{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    limiter,
	}
}

// SetHealth enables failure tracking and short-circuiting for the server
func (t *LibreTranslator) SetHealth(h *health.Service) {
	t.health = h
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate translates text from source to target
func (t *LibreTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: t.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	dependency := "translate:" + req.URL.Host
	if !t.health.IsAvailable(dependency) {
		return "", health.UnavailableError(dependency)
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx, req.URL.Host); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			t.health.MarkUnhealthy(dependency, err.Error(), 0)
		}
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read translation response: %w", err)
	}

	var result libreResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		t.health.MarkUnhealthy(dependency, string(raw), resp.StatusCode)
		return "", fmt.Errorf("failed to decode translation response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || result.Error != "" {
		// 400 means the request itself was rejected, not that the server is down
		if resp.StatusCode != http.StatusBadRequest {
			t.health.MarkUnhealthy(dependency, result.Error, resp.StatusCode)
		}
		return "", fmt.Errorf("translation failed with status %d: %s", resp.StatusCode, result.Error)
	}
	t.health.MarkHealthy(dependency)

	translated := strings.TrimSpace(result.TranslatedText)
	if translated == "" {
		return "", fmt.Errorf("translation returned empty text")
	}
	return translated, nil
}

// GoogleTranslator uses the Cloud Translation API
type GoogleTranslator struct {
	client *translate.Client
}

// NewGoogleTranslator creates a Cloud Translation client. An empty apiKey
// falls back to Application Default Credentials.
func NewGoogleTranslator(ctx context.Context, apiKey string) (*GoogleTranslator, error) {
	var opts []option.ClientOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation client: %w", err)
	}

	log.Println("✅ Google Cloud Translation client initialized")
	return &GoogleTranslator{client: client}, nil
}

// Translate translates text from source to target
func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	targetTag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", target, err)
	}
	sourceTag, err := language.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid source language %q: %w", source, err)
	}

	translations, err := t.client.Translate(ctx, []string{text}, targetTag, &translate.Options{
		Source: sourceTag,
		Format: translate.Text,
	})
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	if len(translations) == 0 || strings.TrimSpace(translations[0].Text) == "" {
		return "", fmt.Errorf("translation returned empty text")
	}
	return strings.TrimSpace(translations[0].Text), nil
}

// Close releases the client connection
func (t *GoogleTranslator) Close() error {
	return t.client.Close()
}

// NoopTranslator returns its input unchanged (TRANSLATE_PROVIDER=none)
type NoopTranslator struct{}

// Translate returns text as is
func (NoopTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	return text, nil
}

// ValidateLanguage checks that code is a well-formed BCP 47 language tag
func ValidateLanguage(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("language code is empty")
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return nil
}
