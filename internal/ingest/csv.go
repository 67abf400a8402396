// Package ingest loads raw (timestamp, value) pairs from CSV files. It is an
// external collaborator of the detector/correlator core — the core never
// imports it, it only ever hands the core a map[int64]float64.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/numeric"
)

// ReadCSV reads a two-column (timestamp, value) CSV file into a mapping,
// keyed by epoch: a numeric timestamp is taken verbatim, a date-time one is
// converted to epoch milliseconds. Delimiter is ',' and quote is '|',
// matching the fixed dialect the core's CSV dialect was originally tied to. Rows that
// fail to parse (bad timestamp format, non-numeric value) are silently
// skipped rather than aborting the whole load.
func ReadCSV(path string) (map[int64]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidDataFormat, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ','
	// encoding/csv has no separate quote-rune setting, so a field wrapped in
	// '|' is unwrapped by unquotePipe below; LazyQuotes keeps a stray '"'
	// from turning into a read error.
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	data := make(map[int64]float64)
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) < 2 {
			continue
		}
		epochMillis, ok := numeric.ToEpochMillis(unquotePipe(record[0]))
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(unquotePipe(record[1]), 64)
		if err != nil {
			continue
		}
		data[int64(epochMillis)] = value
	}
	return data, nil
}

// unquotePipe strips one pair of surrounding '|' quote characters.
func unquotePipe(field string) string {
	if len(field) >= 2 && field[0] == '|' && field[len(field)-1] == '|' {
		return field[1 : len(field)-1]
	}
	return field
}
