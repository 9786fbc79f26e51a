package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyUsesUTC(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 02:30 in Jakarta is still the previous day in UTC.
	local := time.Date(2026, 3, 15, 2, 30, 0, 0, jakarta)

	assert.Equal(t, "2026-03-14", DateKey(local))
}

func TestNormalizeDateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare date key", input: "2026-03-15", want: "2026-03-15"},
		{name: "rfc3339 timestamp", input: "2026-03-15T10:00:00Z", want: "2026-03-15"},
		{name: "rfc3339 with offset", input: "2026-03-15T01:00:00+07:00", want: "2026-03-14"},
		{name: "wrong separator", input: "2026/03/15", wantErr: true},
		{name: "day and month swapped", input: "15-03-2026", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDateKey(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDateKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServingForTreatsStaleCursorAsZero(t *testing.T) {
	p := &DoctorProfile{CurrentServing: 7, ServingDate: "2026-03-14"}

	assert.Equal(t, 7, p.ServingFor("2026-03-14"))
	// Yesterday's cursor never leaks into today's queue.
	assert.Equal(t, 0, p.ServingFor("2026-03-15"))
	assert.Equal(t, 0, (&DoctorProfile{}).ServingFor("2026-03-15"))
}
