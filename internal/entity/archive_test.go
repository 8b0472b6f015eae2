package entity

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/remote/remotetest"
	"github.com/tgienger/kairo/internal/view"
)

func TestArchiveView(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(*remotetest.Server)
		state   view.State
		message string
		cards   int
	}{
		{"not available", func(s *remotetest.Server) { s.DisableArchive() }, view.StateEmpty, "No archived tasks found or feature not yet available.", 0},
		{"server error", func(s *remotetest.Server) {
			s.Fail(http.MethodGet, "/tasks/archived", http.StatusInternalServerError, "")
		}, view.StateError, "Failed to load archived tasks.", 0},
		{"empty", func(*remotetest.Server) {}, view.StateEmpty, "You have no archived tasks.", 0},
		{"ready", func(s *remotetest.Server) {
			s.SeedArchived(map[string]any{"task_id": "t9", "title": "Old", "status": "completed", "archived_at": "2024-01-02T10:00:00"})
		}, view.StateReady, "", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := remotetest.New()
			defer srv.Close()
			tc.setup(srv)

			board := view.NewRecorder(view.ArchiveContainer)
			client := remote.NewClient(srv.URL, "user123", 0, nil, nil)
			archive := NewArchiveView(client, board, models.FixedClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), nil)
			_ = archive.Load(context.Background())

			lv, ok := view.LatestAs[view.ListView](board, view.ArchiveContainer)
			require.True(t, ok)
			assert.Equal(t, tc.state, lv.State)
			assert.Equal(t, tc.message, lv.Message)
			assert.Len(t, lv.Cards, tc.cards)
			if tc.cards > 0 {
				assert.Equal(t, "Jan 2, 2024 10:00 AM", lv.Cards[0].Lines[1].Value)
				assert.Equal(t, "N/A", lv.Cards[0].Lines[0].Value)
			}
		})
	}
}
