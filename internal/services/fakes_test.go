package services

import (
	"context"
	"sync"
	"time"

	"perfdash-backend/internal/models"
)

type generateCall struct {
	model string
}

// fakeClient answers Generate from a per-model script. Once a model's script
// is exhausted its last entry repeats.
type fakeClient struct {
	mu      sync.Mutex
	scripts map[string][]fakeReply
	calls   []generateCall
}

type fakeReply struct {
	text string
	err  error
}

func (f *fakeClient) Generate(ctx context.Context, model string, image []byte, mimeType, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generateCall{model: model})

	script := f.scripts[model]
	if len(script) == 0 {
		return "", nil
	}
	reply := script[0]
	if len(script) > 1 {
		f.scripts[model] = script[1:]
	}
	return reply.text, reply.err
}

func (f *fakeClient) callsFor(model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.model == model {
			n++
		}
	}
	return n
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return s.err
}

type fakeStore struct {
	mu        sync.Mutex
	records   []models.Record
	listErr   error
	createErr error
	removeErr error
	created   []models.Record
	removed   []models.RecordID
}

func (f *fakeStore) List(ctx context.Context) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Record(nil), f.records...), nil
}

func (f *fakeStore) Create(ctx context.Context, rec models.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeStore) Remove(ctx context.Context, id models.RecordID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, id)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (r *recordingNotifier) Publish(_ context.Context, n models.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Code
	}
	return out
}

func (r *recordingNotifier) last() models.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notices[len(r.notices)-1]
}

func ids(recs []models.Record) []models.RecordID {
	out := make([]models.RecordID, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
