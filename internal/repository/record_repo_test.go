package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfdash-backend/internal/models"
)

var recordColumns = []string{
	"id", "thumbnail", "name", "du", "avg_w", "re", "vw", "lk", "bm", "cm", "sh", "pfm", "products", "cpm", "cpe",
	"main_product", "permalink", "status", "date",
}

func TestRecordRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, thumbnail, name").
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow(int64(2), "t2", "Second", "01:00", "00:30", "50%", "1K", "10", "1", "2", "3", "90%", "1", "2.0", "0.1",
				"JDENT", "https://www.tiktok.com/@julaherbthailand/video/2", "pinned", "2024-02-01").
			AddRow(int64(1), "t1", "First", "02:00", "01:00", "40%", "2K", "20", "2", "4", "6", "80%", "2", "3.0", "0.2",
				"Julaherb", "", "unpinned", "2024-01-01"))

	recs, err := NewRecordRepo(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, models.RecordID(2), recs[0].ID)
	assert.Equal(t, "Second", recs[0].Name)
	assert.Equal(t, "1K", recs[0].Views)
	assert.Equal(t, models.MainProductJDENT, recs[0].MainProduct)
	assert.Equal(t, models.StatusPinned, recs[0].Status)
	assert.Equal(t, models.StatusUnpinned, recs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_ListError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, thumbnail, name").WillReturnError(errors.New("connection reset"))

	_, err = NewRecordRepo(mock).List(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := models.Record{
		ID: 1700000000000, Thumbnail: "data:image/png;base64,AAAA", Name: "Mouthwash",
		Metrics:     models.Metrics{Duration: "45s", Views: "10.5K"},
		MainProduct: models.MainProductJarvit, Status: models.StatusUnpinned, Date: "2024-08-01T09:30:00Z",
	}

	mock.ExpectExec("INSERT INTO records").
		WithArgs(int64(1700000000000), rec.Thumbnail, "Mouthwash", "45s", "", "", "10.5K", "", "", "", "", "", "", "", "",
			"Jarvit", "", "unpinned", "2024-08-01T09:30:00Z").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewRecordRepo(mock).Create(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_RemoveIsIdempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM records").
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, NewRecordRepo(mock).Remove(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
