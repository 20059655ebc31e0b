package repository

import (
	"context"
	"fmt"

	"perfdash-backend/internal/models"
)

// RecordStore is the durable home of the record collection.
type RecordStore interface {
	List(ctx context.Context) ([]models.Record, error)
	Create(ctx context.Context, rec models.Record) error
	Remove(ctx context.Context, id models.RecordID) error
}

// StoreError is a write the store answered with a non-2xx status.
type StoreError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}
