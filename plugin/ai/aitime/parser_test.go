package aitime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-01-27 is a Tuesday.
var fixedNow = time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)

func TestCreateRuleOrder(t *testing.T) {
	assert.Equal(t, []Rule{RuleRelative, RuleDayQualified, RuleOClock, Rule24Hour, Rule12Hour}, CreateRuleOrder())
}

func TestResolve_Clock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantTime string
		wantDesc string
		wantRule Rule
	}{
		{"12h with description", "set alarm for 7:30 am for gym", "07:30", "gym", Rule12Hour},
		{"12h bare pm", "set an alarm for 7pm", "19:00", "", Rule12Hour},
		{"12h minutes pm", "wake me at 7:05 pm", "19:05", "", Rule12Hour},
		{"12h midnight", "set alarm at 12:00 am", "00:00", "", Rule12Hour},
		{"12h noon", "set alarm at 12 pm", "12:00", "", Rule12Hour},
		{"12h leading zero", "wake me at 07:30pm", "19:30", "", Rule12Hour},
		{"12h keeps words containing am", "set alarm 9 am for team sync", "09:00", "team sync", Rule12Hour},
		{"24h with description", "set alarm 19:15 standup", "19:15", "standup", Rule24Hour},
		{"24h midnight", "set alarm 0:05", "00:05", "", Rule24Hour},
		{"24h word starting with am", "set alarm 14:30 amy's party", "14:30", "amy's party", Rule24Hour},
		{"24h word starting with am before noon", "set alarm 7:30 amazing run", "07:30", "amazing run", Rule24Hour},
		{"24h word starting with pm", "set alarm 9:00 pmr check", "09:00", "pmr check", Rule24Hour},
		{"oclock", "set alarm for 7 o'clock call mom", "07:00", "call mom", RuleOClock},
		{"oclock pm", "set alarm for 7 oclock pm", "19:00", "", RuleOClock},
		{"oclock curly quote", "set alarm 6 o’clock", "06:00", "", RuleOClock},
		{"relative minutes", "set alarm in 5 minutes take tea", "10:05", "take tea", RuleRelative},
		{"relative hours", "remind me in 2 hrs", "12:00", "", RuleRelative},
		{"relative compound", "set alarm in 1 hour and 30 minutes", "11:30", "", RuleRelative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Clock())
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.Equal(t, tt.wantRule, got.Rule)
			assert.Nil(t, got.Date)
		})
	}
}

func TestResolve_DayQualified(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantTime string
		wantDate string
		wantDesc string
	}{
		{"tomorrow", "set alarm tomorrow at 7:30 am for gym", "07:30", "2026-01-28", "gym"},
		{"tomorrow 24h", "set alarm tomorrow 19:15 dinner", "19:15", "2026-01-28", "dinner"},
		{"on later weekday", "set alarm on friday 8pm", "20:00", "2026-01-30", ""},
		{"on same weekday rolls a week", "set alarm on tuesday at 9", "09:00", "2026-02-03", ""},
		{"on earlier weekday", "set alarm on monday at 6:15 am", "06:15", "2026-02-02", ""},
		{"next weekday", "set alarm next friday at 8pm", "20:00", "2026-02-06", ""},
		{"next same weekday", "set alarm next tuesday 10:00", "10:00", "2026-02-10", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, RuleDayQualified, got.Rule)
			assert.Equal(t, tt.wantTime, got.Clock())
			require.NotNil(t, got.Date)
			assert.Equal(t, tt.wantDate, got.Date.Format("2006-01-02"))
			assert.Equal(t, tt.wantDesc, got.Description)
		})
	}
}

func TestResolve_RelativeCrossesMidnight(t *testing.T) {
	late := time.Date(2026, 1, 27, 23, 50, 30, 0, time.UTC)

	got, err := Resolve("set alarm in 20 minutes", late)
	require.NoError(t, err)
	assert.Equal(t, "00:10", got.Clock())
	require.NotNil(t, got.Date)
	assert.Equal(t, "2026-01-28", got.Date.Format("2006-01-02"))

	got, err = Resolve("set alarm in 5 minutes", late)
	require.NoError(t, err)
	assert.Equal(t, "23:55", got.Clock())
	assert.Nil(t, got.Date)
}

func TestResolve_Precedence(t *testing.T) {
	// Relative wins over an explicit clock.
	got, err := Resolve("set alarm in 5 minutes not 7:00", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, RuleRelative, got.Rule)

	// Day-qualified wins over 24-hour.
	got, err = Resolve("set alarm tomorrow at 19:15", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, RuleDayQualified, got.Rule)

	// A 24-hour match followed by a meridiem is left to the 12-hour rule.
	got, err = Resolve("set alarm 7:30 pm", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, Rule12Hour, got.Rule)
	assert.Equal(t, "19:30", got.Clock())

	// Only a whole am/pm word counts as a meridiem.
	got, err = Resolve("set alarm 9:00 pmr check", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, Rule24Hour, got.Rule)
	assert.Equal(t, "09:00", got.Clock())
	assert.Equal(t, "pmr check", got.Description)
}

func TestResolve_Unrecognized(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no time", "set an alarm"},
		{"hour out of range", "set alarm 25:00"},
		{"minute out of range", "set alarm 7:75"},
		{"meridiem hour out of range", "set alarm 13 pm"},
		{"oclock out of range", "set alarm 30 o'clock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, fixedNow)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrUnrecognized)
		})
	}
}

func TestResolveDelete(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *DeleteTarget
		wantErr bool
	}{
		{"12h", "remove the 7:30 am alarm", &DeleteTarget{Time: "07:30"}, false},
		{"12h bare", "remove the 7pm alarm", &DeleteTarget{Time: "19:00"}, false},
		{"12h midnight", "delete 12 am", &DeleteTarget{Time: "00:00"}, false},
		{"24h", "delete 19:15", &DeleteTarget{Time: "19:15"}, false},
		{"all", "remove all alarms", &DeleteTarget{All: true}, false},
		{"number beats all", "delete all 7 am alarms", &DeleteTarget{Time: "07:00"}, false},
		{"word starting with pm", "delete 9:00 pmr check", &DeleteTarget{Time: "09:00"}, false},
		{"nothing", "remove my alarm", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDelete(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnrecognized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Resolve(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	got, err := svc.Resolve(ctx, "set alarm 6:45 am", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "06:45", got.Clock())

	_, err = svc.Resolve(ctx, "set alarm", fixedNow)
	assert.ErrorIs(t, err, ErrUnrecognized)

	target, err := svc.ResolveDelete(ctx, "remove all")
	require.NoError(t, err)
	assert.True(t, target.All)
}
