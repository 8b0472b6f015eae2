package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kairo/internal/entity"
	"github.com/tgienger/kairo/internal/ui/keys"
	"github.com/tgienger/kairo/internal/ui/styles"
	"github.com/tgienger/kairo/internal/view"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// formInput is one editable field. Only the widget matching field.Widget is used.
type formInput struct {
	field  view.Field
	text   textinput.Model
	area   textarea.Model
	option int
}

// formEditor edits a list of fields. Focus index len(inputs) is the save button.
type formEditor struct {
	inputs []formInput
	focus  int
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
}

func newFormEditor(fields []view.Field, s *styles.Styles, km keys.KeyMap, width int) *formEditor {
	inputWidth := clamp(width-10, 20, 60)
	f := &formEditor{styles: s, keys: km, width: width}

	for _, field := range fields {
		in := formInput{field: field}
		switch field.Widget {
		case view.WidgetTextArea:
			in.area = textarea.New()
			in.area.Placeholder = field.Label
			in.area.CharLimit = 2000
			in.area.SetWidth(inputWidth)
			in.area.SetHeight(3)
			in.area.ShowLineNumbers = false
			in.area.SetValue(field.Value)
		case view.WidgetSelect:
			for i, opt := range field.Options {
				if opt == field.Value {
					in.option = i
				}
			}
		default:
			in.text = textinput.New()
			in.text.CharLimit = 200
			in.text.Width = inputWidth
			switch field.Widget {
			case view.WidgetDate:
				in.text.Placeholder = "YYYY-MM-DD"
				in.text.CharLimit = 10
			case view.WidgetTime:
				in.text.Placeholder = "HH:MM"
				in.text.CharLimit = 5
			default:
				in.text.Placeholder = field.Label
			}
			in.text.SetValue(field.Value)
		}
		f.inputs = append(f.inputs, in)
	}

	f.updateFocus()
	return f
}

// Values returns the current input as a form
func (f *formEditor) Values() entity.Form {
	form := entity.Form{}
	for _, in := range f.inputs {
		switch in.field.Widget {
		case view.WidgetTextArea:
			form[in.field.Name] = in.area.Value()
		case view.WidgetSelect:
			if len(in.field.Options) > 0 {
				form[in.field.Name] = in.field.Options[in.option]
			}
		default:
			form[in.field.Name] = in.text.Value()
		}
	}
	return form
}

func (f *formEditor) onSave() bool {
	return f.focus == len(f.inputs)
}

func (f *formEditor) current() *formInput {
	if f.onSave() {
		return nil
	}
	return &f.inputs[f.focus]
}

// Update handles a key. submit is true when the save button was pressed.
func (f *formEditor) Update(msg tea.KeyMsg) (submit bool, cmd tea.Cmd) {
	n := len(f.inputs) + 1
	in := f.current()

	switch {
	case key.Matches(msg, f.keys.Tab):
		f.focus = (f.focus + 1) % n
		f.updateFocus()
		return false, nil

	case key.Matches(msg, f.keys.ShiftTab):
		f.focus = (f.focus + n - 1) % n
		f.updateFocus()
		return false, nil

	case key.Matches(msg, f.keys.Enter):
		if in == nil {
			return true, nil
		}
		// Enter inside a textarea is a newline
		if in.field.Widget != view.WidgetTextArea {
			f.focus++
			f.updateFocus()
			return false, nil
		}

	case key.Matches(msg, f.keys.Left), key.Matches(msg, f.keys.Right):
		if in != nil && in.field.Widget == view.WidgetSelect && len(in.field.Options) > 0 {
			step := 1
			if key.Matches(msg, f.keys.Left) {
				step = len(in.field.Options) - 1
			}
			in.option = (in.option + step) % len(in.field.Options)
			return false, nil
		}
	}

	if in == nil {
		return false, nil
	}
	switch in.field.Widget {
	case view.WidgetSelect:
	case view.WidgetTextArea:
		in.area, cmd = in.area.Update(msg)
	default:
		in.text, cmd = in.text.Update(msg)
	}
	return false, cmd
}

func (f *formEditor) updateFocus() {
	for i := range f.inputs {
		in := &f.inputs[i]
		switch in.field.Widget {
		case view.WidgetTextArea:
			if i == f.focus {
				in.area.Focus()
			} else {
				in.area.Blur()
			}
		case view.WidgetSelect:
		default:
			if i == f.focus {
				in.text.Focus()
			} else {
				in.text.Blur()
			}
		}
	}
}

// View renders the form with heading and an optional error line
func (f *formEditor) View(heading, errText string) string {
	s := f.styles
	inputWidth := clamp(f.width-10, 20, 60)

	rows := []string{s.Title.Render(heading), ""}
	for i, in := range f.inputs {
		label := in.field.Label
		if in.field.Required {
			label += " *"
		}
		box := s.Input
		if i == f.focus {
			box = s.InputFocused
		}

		var body string
		switch in.field.Widget {
		case view.WidgetTextArea:
			body = in.area.View()
		case view.WidgetSelect:
			opts := make([]string, 0, len(in.field.Options))
			for j, opt := range in.field.Options {
				if j == in.option {
					opts = append(opts, s.HelpKey.Render("["+opt+"]"))
				} else {
					opts = append(opts, s.TitleMuted.Render(opt))
				}
			}
			body = "← " + strings.Join(opts, " ") + " →"
		default:
			body = in.text.View()
		}
		rows = append(rows, s.FieldLabel.Render(label), box.Width(inputWidth).Render(body))
	}

	btn := s.Button
	if f.onSave() {
		btn = s.ButtonFocused
	}
	rows = append(rows, "", btn.Render("Save"))

	if errText != "" {
		rows = append(rows, "", s.Error.Render(errText))
	}

	rows = append(rows, s.Help.Render(
		s.HelpKey.Render("tab")+" next • "+
			s.HelpKey.Render("←/→")+" choose • "+
			s.HelpKey.Render("ctrl+s")+" save • "+
			s.HelpKey.Render("esc")+" cancel",
	))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
