package numeric

import (
	"strconv"
	"time"
)

// TimestampFormats lists the date-time layouts CSV ingestion recognizes, in
// Go's reference-time notation. Order matches the fixed set the CSV loader
// tries.
var TimestampFormats = []string{
	"20060102_15:04:05",
	"2006-01-02 15:04:05.000000",
	"20060102 15:04:05",
	"2006-01-02_15:04:05",
	"2006-01-02T15:04:05.000000",
	"15:04:05.000000",
	"2006-01-02T15:04:05.000000-0700",
	"20060102T15:04:05",
	"2006-01-02_15:04:05.000000",
	"20060102_15:04:05.000000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102T15:04:05.000000",
	"15:04:05",
	"20060102 15:04:05.000000",
}

// ToEpochMillis converts a timestamp string to an epoch value the way CSV
// ingestion does: a float-castable string is taken verbatim as the epoch; a
// match against one of TimestampFormats is computed in UTC as
// epochSeconds*1000 + microseconds/1000. Returns ok=false if neither applies.
func ToEpochMillis(s string) (float64, bool) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	for _, layout := range TimestampFormats {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		millis := float64(t.Unix())*1000.0 + float64(t.Nanosecond())/1e6
		return millis, true
	}
	return 0, false
}
