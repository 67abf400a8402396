package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToEpochMillis(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOK  bool
		wantVal float64
	}{
		{name: "bare epoch seconds", input: "1700000000", wantOK: true, wantVal: 1700000000},
		{name: "bare epoch with fraction", input: "1700000000.5", wantOK: true, wantVal: 1700000000.5},
		{name: "ISO datetime", input: "2023-11-14T22:13:20", wantOK: true},
		{name: "compact datetime", input: "20231114 22:13:20", wantOK: true},
		{name: "garbage", input: "not-a-timestamp", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToEpochMillis(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK && tt.wantVal != 0 {
				assert.Equal(t, tt.wantVal, got)
			}
		})
	}
}

func TestToEpochMillis_FormatsAgree(t *testing.T) {
	iso, ok := ToEpochMillis("2023-11-14T22:13:20")
	assert.True(t, ok)
	underscored, ok := ToEpochMillis("20231114_22:13:20")
	assert.True(t, ok)
	assert.Equal(t, iso, underscored)
}
