package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"perfdash-backend/internal/models"
)

const extractionPrompt = `Extract performance metrics from this TikTok Shop Analytics row.
Return ONLY JSON:
{
  "name": "content title",
  "tiktokId": "19-digit id",
  "du": "duration",
  "avgW": "avg watch",
  "re": "retention %",
  "vw": "views",
  "lk": "likes",
  "bm": "bookmarks",
  "cm": "comments",
  "sh": "shares",
  "pfm": "score",
  "products": "count",
  "cpm": "est value",
  "cpe": "est value"
}`

type OrchestratorConfig struct {
	Models             []string
	Retry              RetryPolicy
	Cooldown           time.Duration
	TikTokAccount      string
	DefaultMainProduct models.MainProduct
}

// Orchestrator tries each configured model in order until one returns a
// parseable draft. Models are never called concurrently.
type Orchestrator struct {
	client ExtractionClient
	cfg    OrchestratorConfig
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger
}

func NewOrchestrator(client ExtractionClient, cfg OrchestratorConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retry.Logger == nil {
		cfg.Retry.Logger = logger
	}
	return &Orchestrator{
		client: client,
		cfg:    cfg,
		sleep:  sleepCtx,
		logger: logger,
	}
}

// ExtractResult carries the draft and the model that produced it.
type ExtractResult struct {
	Draft *models.Draft
	Model string
}

func (o *Orchestrator) Extract(ctx context.Context, image []byte, mimeType string) (*ExtractResult, error) {
	if len(image) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"image": "image is empty"}}
	}

	var primaryErr, lastErr error

	for _, model := range o.cfg.Models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		draft, err := Retry(ctx, o.cfg.Retry, func(ctx context.Context, attempt int) (*models.Draft, error) {
			if attempt == 0 {
				o.logger.Info("starting extraction", zap.String("model", model))
			} else {
				o.logger.Info("retrying extraction", zap.String("model", model), zap.Int("attempt", attempt))
			}
			raw, err := o.client.Generate(ctx, model, image, mimeType, extractionPrompt)
			if err != nil {
				return nil, ClassifyError(model, err)
			}
			return ParseDraft(model, raw)
		})
		if err == nil {
			o.finalize(draft)
			return &ExtractResult{Draft: draft, Model: model}, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		o.logger.Warn("model failed",
			zap.String("model", model),
			zap.String("kind", KindOf(err).String()),
			zap.Error(err),
		)

		switch KindOf(err) {
		case KindNotFound:
			continue
		case KindRateLimited:
			if primaryErr == nil {
				primaryErr = err
			}
			o.logger.Warn("quota hit, cooling down before next model",
				zap.String("model", model),
				zap.Duration("cooldown", o.cfg.Cooldown),
			)
			if err := o.sleep(ctx, o.cfg.Cooldown); err != nil {
				return nil, err
			}
		default:
			// Fall through to the next model.
		}
	}

	if primaryErr != nil {
		return nil, primaryErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrAllModelsBusy
}

func (o *Orchestrator) finalize(d *models.Draft) {
	d.TikTokID = strings.TrimSpace(d.TikTokID)
	if d.TikTokID != "" && o.cfg.TikTokAccount != "" {
		d.Permalink = fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", o.cfg.TikTokAccount, d.TikTokID)
	}
	if !d.MainProduct.Valid() {
		d.MainProduct = o.cfg.DefaultMainProduct
	}
}

// ParseDraft decodes one JSON object from a model response.
func ParseDraft(model, raw string) (*models.Draft, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &ExtractionError{Kind: KindInvalidResponse, Model: model, Err: ErrEmptyResponse}
	}
	if !strings.HasPrefix(raw, "{") {
		return nil, &ExtractionError{Kind: KindInvalidResponse, Model: model, Err: errors.New("response is not a JSON object")}
	}

	var draft models.Draft
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&draft); err != nil {
		return nil, &ExtractionError{Kind: KindInvalidResponse, Model: model, Err: fmt.Errorf("parse response: %w", err)}
	}
	if dec.More() {
		return nil, &ExtractionError{Kind: KindInvalidResponse, Model: model, Err: errors.New("response holds more than one JSON value")}
	}
	return &draft, nil
}

// DecodeImage accepts raw image bytes or a base64 data URI and returns the
// bytes with their MIME type.
func DecodeImage(input []byte) ([]byte, string, error) {
	s := strings.TrimSpace(string(input))
	if strings.HasPrefix(s, "data:") {
		comma := strings.Index(s, ",")
		if comma < 0 {
			return nil, "", errors.New("malformed data URI")
		}
		header, payload := s[5:comma], s[comma+1:]
		mimeType := strings.TrimSuffix(header, ";base64")
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("decode data URI: %w", err)
		}
		if mimeType == "" {
			mimeType = sniffImageType(data)
		}
		return data, mimeType, nil
	}
	if len(input) == 0 {
		return nil, "", errors.New("image is empty")
	}
	return input, sniffImageType(input), nil
}

// ToDataURI is the preview form stored as a record thumbnail.
func ToDataURI(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func sniffImageType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if strings.HasPrefix(mimeType, "image/") {
		return mimeType
	}
	return "image/jpeg"
}
