package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/metrics"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/platform/retry"
)

const (
	requestTimeout = 15 * time.Second

	// FallbackMessage is returned to the user when the analysis service
	// stays unavailable through all retries.
	FallbackMessage = "The analysis service is unavailable right now. Please try again later."
)

// Gateway is a stateless client for the text-generation API. It is the only
// component with built-in retry; coordinator errors never pass through here.
type Gateway struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	policy     retry.Policy
}

func NewGateway(apiURL, apiKey string) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiURL:     apiURL,
		apiKey:     apiKey,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   1 * time.Second,
			RateLimitBackoff: 4 * time.Second,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("Analysis request failed, retrying", "attempt", attempt, "backoff_seconds", backoff.Seconds(), "error", err)
			},
		},
	}
}

// request/response shapes of the generateContent API.

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction content   `json:"systemInstruction"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("analysis API returned status %d: %s", e.StatusCode, e.Body)
}

// Analyze sends the prompt and returns the generated text. Transient
// failures are retried with exponential backoff; when attempts are exhausted
// a user-visible fallback message is returned instead of an error.
func (g *Gateway) Analyze(ctx context.Context, prompt string) (string, error) {
	text, err := retry.Do(ctx, g.policy, classifyAPIError, func() (string, error) {
		return g.attempt(ctx, prompt)
	})
	if err != nil {
		var permErr *retry.PermanentError
		if errors.As(err, &permErr) {
			metrics.AnalysisRequestsTotal.WithLabelValues("error").Inc()
			return "", err
		}
		slog.Error("Analysis request exhausted retries", "error", err)
		metrics.AnalysisRequestsTotal.WithLabelValues("fallback").Inc()
		return FallbackMessage, nil
	}
	metrics.AnalysisRequestsTotal.WithLabelValues("ok").Inc()
	return text, nil
}

func (g *Gateway) attempt(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents:          []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: content{Parts: []part{{Text: systemInstruction}}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &apiError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("analysis response contained no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func classifyAPIError(err error) retry.Action {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return retry.Retry
	}

	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return retry.After
	case apiErr.StatusCode >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}
