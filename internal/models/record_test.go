package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID_DecodesNumberAndString(t *testing.T) {
	var recs []Record
	err := json.Unmarshal([]byte(`[{"id":1700000000000},{"id":"42"},{"id":"7.0"},{"id":null}]`), &recs)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, RecordID(1700000000000), recs[0].ID)
	assert.Equal(t, RecordID(42), recs[1].ID)
	assert.Equal(t, RecordID(7), recs[2].ID)
	assert.Equal(t, RecordID(0), recs[3].ID)

	err = json.Unmarshal([]byte(`{"id":"abc"}`), &Record{})
	assert.Error(t, err)
}

func TestRecord_JSONKeysMatchSheetColumns(t *testing.T) {
	rec := Record{ID: 5, Name: "n", Metrics: Metrics{Views: "1K", CPE: "0.1"}, Status: StatusPinned, Date: "2024-01-01"}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, float64(5), m["id"])
	assert.Equal(t, "1K", m["vw"])
	assert.Equal(t, "0.1", m["cpe"])
	assert.Equal(t, "pinned", m["status"])
	assert.NotContains(t, m, "Metrics")
	assert.NotContains(t, m, "permalink")
}

func TestSortByDateDesc(t *testing.T) {
	recs := []Record{
		{ID: 1, Date: "2024-01-01"},
		{ID: 2, Date: "2024-03-01"},
		{ID: 3, Date: "2024-02-01"},
	}
	SortByDateDesc(recs)
	assert.Equal(t, "2024-03-01", recs[0].Date)
	assert.Equal(t, "2024-02-01", recs[1].Date)
	assert.Equal(t, "2024-01-01", recs[2].Date)
}

func TestSortByDateDesc_MixedLayoutsAndUndated(t *testing.T) {
	recs := []Record{
		{ID: 1, Date: ""},
		{ID: 2, Date: "2024-05-01T10:00:00.000Z"},
		{ID: 3, Date: "garbage"},
		{ID: 4, Date: "2024-05-02"},
	}
	SortByDateDesc(recs)
	ids := []RecordID{recs[0].ID, recs[1].ID, recs[2].ID, recs[3].ID}
	assert.Equal(t, []RecordID{4, 2, 1, 3}, ids)
}

func TestMainProduct_Valid(t *testing.T) {
	assert.True(t, MainProductJarvit.Valid())
	assert.False(t, MainProduct("Other").Valid())
	assert.False(t, MainProduct("").Valid())
}
