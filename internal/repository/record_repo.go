package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"perfdash-backend/internal/models"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RecordRepo stores the collection in Postgres instead of a sheet.
type RecordRepo struct {
	pool DB
}

func NewRecordRepo(pool DB) *RecordRepo {
	return &RecordRepo{pool: pool}
}

func (r *RecordRepo) List(ctx context.Context) ([]models.Record, error) {
	query := `SELECT id, thumbnail, name, du, avg_w, re, vw, lk, bm, cm, sh, pfm, products, cpm, cpe,
		main_product, permalink, status, date
		FROM records ORDER BY date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var recs []models.Record
	for rows.Next() {
		var rec models.Record
		var id int64
		var mainProduct, status string
		if err := rows.Scan(
			&id, &rec.Thumbnail, &rec.Name, &rec.Duration, &rec.AvgWatch, &rec.Retention,
			&rec.Views, &rec.Likes, &rec.Bookmarks, &rec.Comments, &rec.Shares, &rec.Efficiency,
			&rec.Products, &rec.CPM, &rec.CPE, &mainProduct, &rec.Permalink, &status, &rec.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.ID = models.RecordID(id)
		rec.MainProduct = models.MainProduct(mainProduct)
		rec.Status = models.RecordStatus(status)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return recs, nil
}

func (r *RecordRepo) Create(ctx context.Context, rec models.Record) error {
	query := `INSERT INTO records (id, thumbnail, name, du, avg_w, re, vw, lk, bm, cm, sh, pfm, products, cpm, cpe,
		main_product, permalink, status, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.pool.Exec(ctx, query,
		int64(rec.ID), rec.Thumbnail, rec.Name, rec.Duration, rec.AvgWatch, rec.Retention,
		rec.Views, rec.Likes, rec.Bookmarks, rec.Comments, rec.Shares, rec.Efficiency,
		rec.Products, rec.CPM, rec.CPE, string(rec.MainProduct), rec.Permalink, string(rec.Status), rec.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create record %d: %w", rec.ID, err)
	}
	return nil
}

func (r *RecordRepo) Remove(ctx context.Context, id models.RecordID) error {
	// Deleting a missing row is not an error: the record may only ever have
	// existed in the sample collection.
	_, err := r.pool.Exec(ctx, "DELETE FROM records WHERE id = $1", int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	return nil
}
