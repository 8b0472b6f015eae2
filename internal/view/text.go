package view

import (
	"fmt"
	"io"
	"strings"
)

// WriteList prints a list container as plain text
func WriteList(w io.Writer, lv ListView) error {
	if lv.State != StateReady {
		_, err := fmt.Fprintln(w, lv.Message)
		return err
	}
	for i, c := range lv.Cards {
		if i > 0 {
			fmt.Fprintln(w)
		}
		badges := make([]string, 0, len(c.Badges))
		for _, b := range c.Badges {
			badges = append(badges, "["+b.Text+"]")
		}
		title := c.Title
		if len(badges) > 0 {
			title += " " + strings.Join(badges, " ")
		}
		if _, err := fmt.Fprintf(w, "%s  (%s)\n", title, c.ID); err != nil {
			return err
		}
		for _, l := range c.Lines {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", l.Label, l.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteDashboard prints the dashboard as plain text
func WriteDashboard(w io.Writer, dv DashboardView) error {
	if dv.State != StateReady {
		_, err := fmt.Fprintln(w, dv.Message)
		return err
	}
	fmt.Fprintf(w, "Total tasks:      %d\n", dv.Stats.TotalTasks)
	fmt.Fprintf(w, "Pending tasks:    %d\n", dv.Stats.PendingTasks)
	fmt.Fprintf(w, "Upcoming events:  %d\n", dv.Stats.UpcomingEvents)
	fmt.Fprintf(w, "Active courses:   %d\n", dv.Stats.ActiveCourses)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent activity")
	if len(dv.Recent) == 0 {
		_, err := fmt.Fprintln(w, "  "+dv.Placeholder)
		return err
	}
	for _, a := range dv.Recent {
		if _, err := fmt.Fprintln(w, "  "+a.Text); err != nil {
			return err
		}
	}
	return nil
}
