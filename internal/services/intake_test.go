package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfdash-backend/internal/config"
	"perfdash-backend/internal/models"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type extractFunc func(ctx context.Context, image []byte, mimeType string) (*ExtractResult, error)

func (f extractFunc) Extract(ctx context.Context, image []byte, mimeType string) (*ExtractResult, error) {
	return f(ctx, image, mimeType)
}

func staticExtractor(name string) extractFunc {
	return func(ctx context.Context, image []byte, mimeType string) (*ExtractResult, error) {
		return &ExtractResult{
			Draft: &models.Draft{Name: name, TikTokID: "73", MainProduct: models.MainProductJDENT, Permalink: "https://www.tiktok.com/@julaherbthailand/video/73"},
			Model: "gemini-1.5-flash",
		}, nil
	}
}

func newTestIntake(ex Extractor, check func() error) (*Intake, *RecordController, *fakeStore) {
	store := &fakeStore{}
	records := NewRecordController(store, &recordingNotifier{}, zap.NewNop())
	records.Load(context.Background())
	in := NewIntake(ex, records, check, zap.NewNop())
	in.now = func() time.Time { return time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC) }
	return in, records, store
}

func TestIntake_ExtractStoresDraft(t *testing.T) {
	in, _, _ := newTestIntake(staticExtractor("Mouthwash"), nil)

	state, err := in.Extract(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "Mouthwash", state.Draft.Name)
	assert.Equal(t, "gemini-1.5-flash", state.Model)
	assert.Equal(t, ToDataURI(pngBytes, "image/png"), state.ImagePreview)

	got, err := in.Draft()
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestIntake_ConfigCheckRunsFirst(t *testing.T) {
	called := false
	ex := extractFunc(func(ctx context.Context, image []byte, mimeType string) (*ExtractResult, error) {
		called = true
		return nil, errors.New("unreachable")
	})
	in, _, _ := newTestIntake(ex, func() error { return &config.ConfigError{Setting: "GEMINI_API_KEY"} })

	_, err := in.Extract(context.Background(), pngBytes)

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "GEMINI_API_KEY", cfgErr.Setting)
	assert.False(t, called)
}

func TestIntake_BadImage(t *testing.T) {
	in, _, _ := newTestIntake(staticExtractor("x"), nil)
	_, err := in.Extract(context.Background(), []byte("data:image/png;base64,%%%"))

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestIntake_StaleRunIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	ex := extractFunc(func(ctx context.Context, image []byte, mimeType string) (*ExtractResult, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return staticExtractor("old")(ctx, image, mimeType)
		}
		return staticExtractor("new")(ctx, image, mimeType)
	})
	in, _, _ := newTestIntake(ex, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := in.Extract(context.Background(), pngBytes)
		errCh <- err
	}()
	<-started

	state, err := in.Extract(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "new", state.Draft.Name)

	close(release)
	assert.ErrorIs(t, <-errCh, ErrSuperseded)

	got, err := in.Draft()
	require.NoError(t, err)
	assert.Equal(t, "new", got.Draft.Name)
}

func TestIntake_DiscardDropsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ex := extractFunc(func(ctx context.Context, image []byte, mimeType string) (*ExtractResult, error) {
		close(started)
		<-release
		return staticExtractor("late")(ctx, image, mimeType)
	})
	in, _, _ := newTestIntake(ex, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := in.Extract(context.Background(), pngBytes)
		errCh <- err
	}()
	<-started
	in.Discard()
	close(release)

	assert.ErrorIs(t, <-errCh, ErrSuperseded)
	_, err := in.Draft()
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestIntake_UpdateDraft(t *testing.T) {
	in, _, _ := newTestIntake(staticExtractor("x"), nil)

	_, err := in.UpdateDraft(models.Draft{Name: "y"})
	assert.ErrorIs(t, err, ErrNoDraft)

	_, err = in.Extract(context.Background(), pngBytes)
	require.NoError(t, err)

	state, err := in.UpdateDraft(models.Draft{Name: "edited", Metrics: models.Metrics{Views: "1.1K"}})
	require.NoError(t, err)
	assert.Equal(t, "edited", state.Draft.Name)
	assert.Equal(t, "1.1K", state.Draft.Views)
	assert.Equal(t, models.MainProductJDENT, state.Draft.MainProduct)

	_, err = in.UpdateDraft(models.Draft{Name: "z", MainProduct: "Other"})
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestIntake_ConfirmAddsRecord(t *testing.T) {
	in, records, store := newTestIntake(staticExtractor("Mouthwash"), nil)
	_, err := in.Extract(context.Background(), pngBytes)
	require.NoError(t, err)

	rec, err := in.Confirm(context.Background(), "")
	require.NoError(t, err)
	records.Wait()

	assert.NotZero(t, rec.ID)
	assert.Equal(t, "Mouthwash", rec.Name)
	assert.Equal(t, models.StatusUnpinned, rec.Status)
	assert.Equal(t, models.MainProductJDENT, rec.MainProduct)
	assert.Equal(t, "https://www.tiktok.com/@julaherbthailand/video/73", rec.Permalink)
	assert.Equal(t, ToDataURI(pngBytes, "image/png"), rec.Thumbnail)
	assert.Equal(t, "2024-08-01T09:30:00Z", rec.Date)

	assert.Equal(t, []models.RecordID{rec.ID}, ids(records.Records()))
	assert.Equal(t, []models.RecordID{rec.ID}, ids(store.created))

	_, err = in.Draft()
	assert.ErrorIs(t, err, ErrNoDraft)
	_, err = in.Confirm(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestIntake_ConfirmThumbnailOverride(t *testing.T) {
	in, records, _ := newTestIntake(staticExtractor("x"), nil)
	_, err := in.Extract(context.Background(), pngBytes)
	require.NoError(t, err)

	rec, err := in.Confirm(context.Background(), " https://cdn.example/thumb.jpg ")
	require.NoError(t, err)
	records.Wait()
	assert.Equal(t, "https://cdn.example/thumb.jpg", rec.Thumbnail)
}
