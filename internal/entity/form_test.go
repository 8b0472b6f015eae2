package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/models"
)

func TestCombine(t *testing.T) {
	cases := []struct {
		name   string
		date   string
		clock  string
		want   string
		absent bool
	}{
		{name: "date and time", date: "2024-05-01", clock: "14:30", want: "2024-05-01T14:30:00"},
		{name: "date only", date: "2024-05-01", want: "2024-05-01T23:59:59"},
		{name: "time only", clock: "14:30", absent: true},
		{name: "nothing", absent: true},
		{name: "padded", date: " 2024-05-01 ", clock: " 09:05 ", want: "2024-05-01T09:05:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := combine("d", "t", Form{"d": tc.date, "t": tc.clock})
			require.NoError(t, err)
			if tc.absent {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestCombineStrict(t *testing.T) {
	got, err := combineStrict("d", "t", Form{"d": "2024-05-01"})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = combineStrict("d", "t", Form{"d": "2024-05-01", "t": "25:00"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "t", verr.Field)
}

func TestSplitRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// combine then split must give back the inputs, including on the
	// day clocks jump forward
	for _, in := range []Form{
		{"d": "2024-03-10", "t": "01:45"},
		{"d": "2024-03-10", "t": "23:00"},
		{"d": "2024-11-03", "t": "12:00"},
	} {
		combined, err := combine("d", "t", in)
		require.NoError(t, err)
		date, clock := split(models.ParseTimestamp(*combined), loc)
		assert.Equal(t, in["d"], date)
		assert.Equal(t, in["t"], clock)
	}
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "N/A", snippet("   "))
	assert.Equal(t, "two lines", snippet("two\n  lines"))

	long := strings.Repeat("a", 60)
	got := snippet(long)
	assert.Equal(t, strings.Repeat("a", 50)+"...", got)

	exact := strings.Repeat("b", 50)
	assert.Equal(t, exact, snippet(exact))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "IN PROGRESS", StatusLabel("in-progress"))
	assert.Equal(t, "PENDING", StatusLabel("pending"))
	assert.Equal(t, "N/A", StatusLabel(""))
}

func TestCardsDoNotMutateInput(t *testing.T) {
	task := models.Task{ID: "t1", Title: "x", Description: strings.Repeat("d", 80), Tags: "a"}
	before := task
	_ = TaskCard(task, time.UTC)
	assert.Equal(t, before, task)
}
