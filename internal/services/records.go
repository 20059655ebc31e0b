package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"perfdash-backend/internal/models"
	"perfdash-backend/internal/repository"
)

// Load sources.
const (
	SourceRemote   = "remote"
	SourceSample   = "sample"
	SourceFallback = "fallback"
	SourceEmpty    = "empty"
)

const (
	msgSaveFailed   = "Failed to save to Cloud. Please check your internet connection."
	msgDeleteFailed = "Failed to delete from Cloud. Reverting."
)

type LoadResult struct {
	Records []models.Record
	Source  string
	Err     error
}

// RecordController owns the session's record collection. Every mutation is
// applied locally first; the store write follows in the background. A failed
// create keeps the record, a failed remove puts it back.
type RecordController struct {
	mu      sync.Mutex
	records []models.Record
	source  string

	store      repository.RecordStore
	storeCheck func() error
	notifier   Notifier
	defaults   []models.Record
	logger     *zap.Logger

	wg             sync.WaitGroup
	persistTimeout time.Duration
	now            func() time.Time
}

type RecordControllerOption func(*RecordController)

// WithDefaults sets the collection shown when the store is empty or
// unreachable.
func WithDefaults(records []models.Record) RecordControllerOption {
	return func(c *RecordController) { c.defaults = records }
}

// WithStoreCheck runs check before every store call; a non-nil error is
// treated as a failed call.
func WithStoreCheck(check func() error) RecordControllerOption {
	return func(c *RecordController) { c.storeCheck = check }
}

func WithPersistTimeout(d time.Duration) RecordControllerOption {
	return func(c *RecordController) { c.persistTimeout = d }
}

func NewRecordController(store repository.RecordStore, notifier Notifier, logger *zap.Logger, opts ...RecordControllerOption) *RecordController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = MultiNotifier{}
	}
	c := &RecordController{
		store:          store,
		notifier:       notifier,
		logger:         logger,
		source:         SourceEmpty,
		persistTimeout: 30 * time.Second,
		now:            time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *RecordController) checkStore() error {
	if c.storeCheck != nil {
		return c.storeCheck()
	}
	return nil
}

// Load replaces the local collection with the store's contents.
func (c *RecordController) Load(ctx context.Context) LoadResult {
	var (
		recs []models.Record
		err  = c.checkStore()
	)
	if err == nil {
		recs, err = c.store.List(ctx)
	}

	res := LoadResult{Err: err}
	switch {
	case err != nil:
		c.logger.Error("load records", zap.Error(err))
		res.Records, res.Source = c.defaultRecords(), SourceFallback
		c.notifier.Publish(ctx, models.NewNotice(models.NoticeError, models.NoticeLoadFailed,
			"Could not load records from the store: "+err.Error(), 0))
	case len(recs) > 0:
		res.Records, res.Source = recs, SourceRemote
	case len(c.defaults) > 0:
		res.Records, res.Source = c.defaultRecords(), SourceSample
	default:
		res.Records, res.Source = []models.Record{}, SourceEmpty
	}

	c.mu.Lock()
	c.records = append([]models.Record(nil), res.Records...)
	c.source = res.Source
	c.mu.Unlock()

	c.logger.Info("records loaded", zap.String("source", res.Source), zap.Int("count", len(res.Records)))
	res.Records = sortedCopy(res.Records)
	return res
}

// Records returns the collection, most recent first.
func (c *RecordController) Records() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sortedCopy(c.records)
}

func (c *RecordController) Source() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// NextID returns an id derived from the current time that is larger than
// every id in the collection.
func (c *RecordController) NextID() models.RecordID {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := models.RecordID(c.now().UnixMilli())
	for _, r := range c.records {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	return id
}

// Add prepends rec and persists it in the background.
func (c *RecordController) Add(ctx context.Context, rec models.Record) error {
	if rec.ID == 0 {
		return &ValidationError{Fields: map[string]string{"id": "id is required"}}
	}

	c.mu.Lock()
	for _, r := range c.records {
		if r.ID == rec.ID {
			c.mu.Unlock()
			return ErrDuplicateID
		}
	}
	c.records = append([]models.Record{rec}, c.records...)
	c.mu.Unlock()

	c.persist(ctx, func(ctx context.Context) {
		err := c.checkStore()
		if err == nil {
			err = c.store.Create(ctx, rec)
		}
		if err != nil {
			c.logger.Error("persist record", zap.Stringer("id", rec.ID), zap.Error(err))
			c.notifier.Publish(ctx, models.NewNotice(models.NoticeError, models.NoticeRecordSaveFailed, msgSaveFailed, rec.ID))
			return
		}
		c.notifier.Publish(ctx, models.NewNotice(models.NoticeInfo, models.NoticeRecordSaved, "Record saved.", rec.ID))
	})
	return nil
}

// Delete removes id locally and from the store; the record is restored at
// its previous position if the store call fails.
func (c *RecordController) Delete(ctx context.Context, id models.RecordID) error {
	c.mu.Lock()
	idx := -1
	for i, r := range c.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return ErrRecordNotFound
	}
	removed := c.records[idx]
	c.records = append(append([]models.Record(nil), c.records[:idx]...), c.records[idx+1:]...)
	c.mu.Unlock()

	c.persist(ctx, func(ctx context.Context) {
		err := c.checkStore()
		if err == nil {
			err = c.store.Remove(ctx, id)
		}
		if err != nil {
			c.logger.Error("delete record", zap.Stringer("id", id), zap.Error(err))
			c.restore(idx, removed)
			c.notifier.Publish(ctx, models.NewNotice(models.NoticeError, models.NoticeRecordDeleteFailed, msgDeleteFailed, id))
			return
		}
		c.notifier.Publish(ctx, models.NewNotice(models.NoticeInfo, models.NoticeRecordDeleted, "Record deleted.", id))
	})
	return nil
}

// Wait blocks until all background store calls have finished.
func (c *RecordController) Wait() {
	c.wg.Wait()
}

func (c *RecordController) restore(idx int, rec models.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.ID == rec.ID {
			return
		}
	}
	if idx > len(c.records) {
		idx = len(c.records)
	}
	c.records = append(c.records, models.Record{})
	copy(c.records[idx+1:], c.records[idx:])
	c.records[idx] = rec
}

func (c *RecordController) persist(ctx context.Context, fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.persistTimeout)
		defer cancel()
		fn(pctx)
	}()
}

func (c *RecordController) defaultRecords() []models.Record {
	return append([]models.Record(nil), c.defaults...)
}

func sortedCopy(recs []models.Record) []models.Record {
	out := append([]models.Record{}, recs...)
	models.SortByDateDesc(out)
	return out
}
