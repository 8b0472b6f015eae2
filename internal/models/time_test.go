package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	cases := []struct {
		name  string
		in    string
		valid bool
		want  time.Time
	}{
		{"rfc3339 utc", "2024-03-10T07:30:00Z", true, time.Date(2024, 3, 10, 3, 30, 0, 0, ny)},
		{"rfc3339 offset", "2024-03-10T12:00:00+01:00", true, time.Date(2024, 3, 10, 7, 0, 0, 0, ny)},
		{"naive", "2024-03-10T23:59:59", true, time.Date(2024, 3, 10, 23, 59, 59, 0, ny)},
		{"naive space", "2024-03-10 08:15:00", true, time.Date(2024, 3, 10, 8, 15, 0, 0, ny)},
		{"naive fraction", "2024-03-10T08:15:00.250000", true, time.Date(2024, 3, 10, 8, 15, 0, 250000000, ny)},
		{"date only", "2024-03-10", true, time.Date(2024, 3, 10, 0, 0, 0, 0, ny)},
		{"garbage", "next tuesday", false, time.Time{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := ParseTimestamp(tc.in)
			assert.True(t, ts.Present())
			assert.Equal(t, tc.valid, ts.Valid())
			got, ok := ts.In(ny)
			assert.Equal(t, tc.valid, ok)
			if tc.valid {
				assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
			}
		})
	}
}

func TestTimestampJSON(t *testing.T) {
	var task Task
	body := `{"task_id":"t1","title":"x","due_datetime":null,"created_at":"2024-01-02T03:04:05","tags":["a","b"]}`
	require.NoError(t, json.Unmarshal([]byte(body), &task))

	assert.False(t, task.Due.Present())
	assert.True(t, task.CreatedAt.Valid())
	assert.Equal(t, FreeText("a, b"), task.Tags)
	assert.Equal(t, "No due date", task.Due.Format(time.UTC, DateTimeLayout, "No due date"))

	out, err := json.Marshal(task.Due)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestDateAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	d := ParseDate("2024-03-10")
	require.True(t, d.Valid())
	assert.Equal(t, "Mar 10, 2024", d.Format(DateLayout, "N/A"))
	assert.Equal(t, "2024-03-10", d.String())

	// the day is only 23 hours long in New York
	assert.Equal(t, 23*time.Hour-time.Nanosecond, d.EndIn(ny).Sub(d.StartIn(ny)))

	again := ParseDate(d.String())
	assert.Equal(t, d.String(), again.String())

	prefixed := ParseDate("2024-11-03T00:00:00")
	assert.Equal(t, "2024-11-03", prefixed.String())
}

func TestDateJSON(t *testing.T) {
	var c Course
	require.NoError(t, json.Unmarshal([]byte(`{"course_id":"c1","name":"Go","start_date":"2024-01-15","end_date":null}`), &c))
	assert.True(t, c.StartDate.Valid())
	assert.False(t, c.EndDate.Present())

	out, err := json.Marshal(c.StartDate)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-15"`, string(out))
}
