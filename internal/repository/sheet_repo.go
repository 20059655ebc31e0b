package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"perfdash-backend/internal/models"
)

// SheetRepo talks to a spreadsheet web-app endpoint: GET lists rows, POST
// with a record appends one, POST with {"action":"delete"} removes one.
type SheetRepo struct {
	url          string
	http         *http.Client
	strictWrites bool
	now          func() time.Time
}

// SheetOption configures a SheetRepo.
type SheetOption func(*SheetRepo)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) SheetOption {
	return func(r *SheetRepo) {
		r.http = hc
	}
}

// WithStrictWrites controls whether a non-2xx answer to a write counts as a
// failure. With strict writes off only transport errors fail, matching
// endpoints whose write responses cannot be read.
func WithStrictWrites(strict bool) SheetOption {
	return func(r *SheetRepo) {
		r.strictWrites = strict
	}
}

func NewSheetRepo(url string, opts ...SheetOption) *SheetRepo {
	r := &SheetRepo{
		url:          url,
		strictWrites: true,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type deleteRequest struct {
	Action string          `json:"action"`
	ID     models.RecordID `json:"id"`
}

func (r *SheetRepo) List(ctx context.Context) ([]models.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: create request")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StoreError{Op: "list", StatusCode: resp.StatusCode, Body: truncate(body, 200)}
	}

	var recs []models.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, eris.Wrap(err, "sheet: unmarshal records")
	}

	loadedAt := r.now().UTC().Format(time.RFC3339Nano)
	for i := range recs {
		if recs[i].Date == "" {
			recs[i].Date = loadedAt
		}
	}
	return recs, nil
}

func (r *SheetRepo) Create(ctx context.Context, rec models.Record) error {
	return r.post(ctx, "create", rec)
}

func (r *SheetRepo) Remove(ctx context.Context, id models.RecordID) error {
	return r.post(ctx, "delete", deleteRequest{Action: "delete", ID: id})
}

func (r *SheetRepo) post(ctx context.Context, op string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "sheet: marshal %s", op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrapf(err, "sheet: create %s request", op)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "sheet: send %s request", op)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if r.strictWrites && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return &StoreError{Op: op, StatusCode: resp.StatusCode, Body: truncate(respBody, 200)}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
