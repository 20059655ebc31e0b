package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"perfdash-backend/internal/models"
)

// Extractor turns an image into a draft.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*ExtractResult, error)
}

// Intake holds the operator's pending draft. Every extraction run takes a
// generation number; a run that finishes after a newer run started, or after
// the draft was discarded, is dropped.
type Intake struct {
	mu         sync.Mutex
	generation uint64
	state      *models.DraftState

	extractor Extractor
	records   *RecordController
	check     func() error
	logger    *zap.Logger
	now       func() time.Time
}

// NewIntake wires the draft lifecycle. check runs before any network call and
// reports missing configuration.
func NewIntake(extractor Extractor, records *RecordController, check func() error, logger *zap.Logger) *Intake {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Intake{
		extractor: extractor,
		records:   records,
		check:     check,
		logger:    logger,
		now:       time.Now,
	}
}

// Extract runs a new extraction and, if it is still the latest run when it
// finishes, makes its result the pending draft.
func (in *Intake) Extract(ctx context.Context, input []byte) (*models.DraftState, error) {
	if in.check != nil {
		if err := in.check(); err != nil {
			return nil, err
		}
	}

	image, mimeType, err := DecodeImage(input)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"image": err.Error()}}
	}

	in.mu.Lock()
	in.generation++
	gen := in.generation
	in.mu.Unlock()

	res, err := in.extractor.Extract(ctx, image, mimeType)

	in.mu.Lock()
	defer in.mu.Unlock()
	if gen != in.generation {
		in.logger.Info("discarding stale extraction", zap.Uint64("generation", gen), zap.Uint64("current", in.generation))
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	in.state = &models.DraftState{
		Draft:        res.Draft,
		ImagePreview: ToDataURI(image, mimeType),
		Model:        res.Model,
		ExtractedAt:  in.now().UTC(),
	}
	return copyState(in.state), nil
}

func (in *Intake) Draft() (*models.DraftState, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state == nil {
		return nil, ErrNoDraft
	}
	return copyState(in.state), nil
}

// UpdateDraft replaces the editable fields of the pending draft.
func (in *Intake) UpdateDraft(d models.Draft) (*models.DraftState, error) {
	if d.MainProduct != "" && !d.MainProduct.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"mainProduct": "must be one of JDENT, Jarvit, Julaherb"}}
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state == nil {
		return nil, ErrNoDraft
	}
	if d.MainProduct == "" {
		d.MainProduct = in.state.Draft.MainProduct
	}
	in.state.Draft = &d
	return copyState(in.state), nil
}

// Discard drops the pending draft and any extraction still in flight.
func (in *Intake) Discard() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.generation++
	in.state = nil
}

// Confirm turns the pending draft into a record and adds it to the
// collection. thumbnail overrides the screenshot preview when set.
func (in *Intake) Confirm(ctx context.Context, thumbnail string) (*models.Record, error) {
	in.mu.Lock()
	state := in.state
	in.state = nil
	in.mu.Unlock()
	if state == nil {
		return nil, ErrNoDraft
	}

	d := state.Draft
	rec := models.Record{
		ID:          in.records.NextID(),
		Thumbnail:   state.ImagePreview,
		Name:        d.Name,
		Metrics:     d.Metrics,
		MainProduct: d.MainProduct,
		Permalink:   d.Permalink,
		Status:      models.StatusUnpinned,
		Date:        in.now().UTC().Format(time.RFC3339Nano),
	}
	if t := strings.TrimSpace(thumbnail); t != "" {
		rec.Thumbnail = t
	}

	if err := in.records.Add(ctx, rec); err != nil {
		in.mu.Lock()
		if in.state == nil {
			in.state = state
		}
		in.mu.Unlock()
		return nil, err
	}

	in.logger.Info("draft confirmed", zap.Stringer("id", rec.ID), zap.String("name", rec.Name))
	return &rec, nil
}

func copyState(s *models.DraftState) *models.DraftState {
	cp := *s
	if s.Draft != nil {
		d := *s.Draft
		cp.Draft = &d
	}
	return &cp
}
