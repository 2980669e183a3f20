package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/alarmbot/plugin/ai/reminder"
)

func testAlarms() []*reminder.Alarm {
	date := "2026-01-28"
	return []*reminder.Alarm{
		{ID: 1, Time: "07:30", Description: "gym"},
		{ID: 2, Time: "19:15", Description: "standup", IsRinging: true},
		{ID: 3, Time: "20:00", Description: "gym class", Date: &date},
	}
}

func ids(alarms []*reminder.Alarm) []int64 {
	out := make([]int64, 0, len(alarms))
	for _, a := range alarms {
		out = append(out, a.ID)
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []int64
	}{
		{"empty matches all", "", []int64{1, 2, 3}},
		{"afternoon", "hour >= 12", []int64{2, 3}},
		{"ringing", "ringing", []int64{2}},
		{"description", `description.contains("gym")`, []int64{1, 3}},
		{"undated gym", `description.contains("gym") && !dated`, []int64{1}},
		{"by date", `date == "2026-01-28"`, []int64{3}},
		{"by clock", `time == "07:30" || minute == 15`, []int64{1, 2}},
		{"by id", "id == 3", []int64{3}},
		{"none", "false", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := f.Apply(testAlarms())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	for _, expr := range []string{
		"hour >=",
		"unknown == 1",
		"hour + 1",
		`description == 1`,
	} {
		t.Run(expr, func(t *testing.T) {
			f, err := Compile(expr)
			assert.Nil(t, f)
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}
}

func TestFilter_String(t *testing.T) {
	f, err := Compile("  ringing ")
	require.NoError(t, err)
	assert.Equal(t, "ringing", f.String())
}

func TestFilter_MalformedClock(t *testing.T) {
	f, err := Compile("hour == -1")
	require.NoError(t, err)
	ok, err := f.Match(&reminder.Alarm{ID: 9, Time: "bogus"})
	require.NoError(t, err)
	assert.True(t, ok)
}
