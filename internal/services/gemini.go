package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ExtractionClient sends one image and prompt to one model and returns the
// raw response text. Errors come back already classified.
type ExtractionClient interface {
	Generate(ctx context.Context, model string, image []byte, mimeType, prompt string) (string, error)
}

type GeminiClient struct {
	client   *genai.Client
	limiter  *rate.Limiter
	rateChan chan struct{} // Token bucket
	logger   *zap.Logger
}

// NewGeminiClient creates the single Gemini client for the process.
// requestsPerMin <= 0 disables pacing.
func NewGeminiClient(ctx context.Context, apiKey string, requestsPerMin, concurrentReqs int, logger *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var limiter *rate.Limiter
	if requestsPerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMin)), 1)
	}

	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiClient{
		client:   client,
		limiter:  limiter,
		rateChan: rateChan,
		logger:   logger,
	}, nil
}

func (g *GeminiClient) Close() {
	g.client.Close()
}

// acquireRate blocks until a rate slot is available
func (g *GeminiClient) acquireRate(ctx context.Context) error {
	select {
	case <-g.rateChan:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.releaseRate()
			return err
		}
	}
	return nil
}

func (g *GeminiClient) releaseRate() {
	g.rateChan <- struct{}{}
}

func (g *GeminiClient) Generate(ctx context.Context, model string, image []byte, mimeType, prompt string) (string, error) {
	if err := g.acquireRate(ctx); err != nil {
		return "", &ExtractionError{Kind: KindTransport, Model: model, Err: err}
	}
	defer g.releaseRate()

	gm := g.client.GenerativeModel(model)
	gm.SetTemperature(0.1)
	gm.ResponseMIMEType = "application/json"

	resp, err := gm.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: image},
		genai.Text(prompt),
	)
	if err != nil {
		return "", ClassifyError(model, fmt.Errorf("Gemini API error: %w", err))
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			g.logger.Warn("Gemini candidate stopped early",
				zap.String("model", model),
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()),
			)
		}
	}

	return extractText(resp), nil
}

// ListModels returns the names of models whose name contains substr
// (case-insensitive). An empty substr matches everything.
func (g *GeminiClient) ListModels(ctx context.Context, substr string) ([]string, error) {
	substr = strings.ToLower(substr)
	var names []string
	it := g.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if substr == "" || strings.Contains(strings.ToLower(m.Name), substr) {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
