package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type MainProduct string

const (
	MainProductJDENT    MainProduct = "JDENT"
	MainProductJarvit   MainProduct = "Jarvit"
	MainProductJulaherb MainProduct = "Julaherb"
)

func (m MainProduct) Valid() bool {
	switch m {
	case MainProductJDENT, MainProductJarvit, MainProductJulaherb:
		return true
	}
	return false
}

type RecordStatus string

const (
	StatusPinned   RecordStatus = "pinned"
	StatusUnpinned RecordStatus = "unpinned"
)

// Metrics are kept as the display strings read off the screenshot.
type Metrics struct {
	Duration   string `json:"du"`
	AvgWatch   string `json:"avgW"`
	Retention  string `json:"re"`
	Views      string `json:"vw"`
	Likes      string `json:"lk"`
	Bookmarks  string `json:"bm"`
	Comments   string `json:"cm"`
	Shares     string `json:"sh"`
	Efficiency string `json:"pfm"`
	Products   string `json:"products"`
	CPM        string `json:"cpm"`
	CPE        string `json:"cpe"`
}

type Record struct {
	ID        RecordID `json:"id"`
	Thumbnail string   `json:"thumbnail"`
	Name      string   `json:"name"`
	Metrics
	MainProduct MainProduct  `json:"mainProduct,omitempty"`
	Permalink   string       `json:"permalink,omitempty"`
	Status      RecordStatus `json:"status"`
	Date        string       `json:"date"`
}

// RecordID decodes from either a JSON number or a numeric string; sheet
// backends are not consistent about which one they return.
type RecordID int64

func (id *RecordID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid record id %s", string(b))
		}
		n = int64(f)
	}
	*id = RecordID(n)
	return nil
}

func (id RecordID) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(id))
}

func (id RecordID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseRecordID(s string) (RecordID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return RecordID(n), nil
}

// Time parses Date. Records with an unreadable date report ok=false.
func (r Record) Time() (time.Time, bool) {
	if r.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, r.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByDateDesc orders records most recent first. Undated records go last
// and ties keep their relative order.
func SortByDateDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, okI := records[i].Time()
		tj, okJ := records[j].Time()
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
}
