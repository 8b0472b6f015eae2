package entity

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/view"
)

const (
	notAvailable = "N/A"
	noDueDate    = "No due date"
	snippetWidth = 50
)

// snippet flattens and shortens free text for list cards
func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return notAvailable
	}
	if ansi.StringWidth(s) <= snippetWidth {
		return s
	}
	return ansi.Truncate(s, snippetWidth+3, "...")
}

func textOr(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// StatusLabel formats a status for display: "in-progress" becomes "IN PROGRESS"
func StatusLabel(status string) string {
	if status == "" {
		return notAvailable
	}
	return strings.ToUpper(strings.ReplaceAll(status, "-", " "))
}

func priorityBadge(priority string) view.Badge {
	switch priority {
	case models.PriorityLow:
		return view.Badge{Text: "LOW", Tone: view.ToneLow}
	case models.PriorityMedium:
		return view.Badge{Text: "MEDIUM", Tone: view.ToneMedium}
	case models.PriorityHigh:
		return view.Badge{Text: "HIGH", Tone: view.ToneHigh}
	case "":
		return view.Badge{Text: notAvailable, Tone: view.ToneMuted}
	}
	return view.Badge{Text: strings.ToUpper(priority), Tone: view.ToneNeutral}
}

func statusBadge(status string) view.Badge {
	tone := view.ToneNeutral
	switch status {
	case models.StatusCompleted:
		tone = view.ToneSuccess
	case models.StatusCancelled, "":
		tone = view.ToneMuted
	case models.StatusInProgress:
		tone = view.ToneMedium
	}
	return view.Badge{Text: StatusLabel(status), Tone: tone}
}
