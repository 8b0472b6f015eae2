// Package view holds the rendered state of every screen region and the
// capability controllers use to publish it.
package view

// Container names
const (
	DashboardContainer = "dashboard"
	ChatContainer      = "chat"
	NoticeContainer    = "notice"
	ArchiveContainer   = "archived-tasks-list"
)

// ListContainer is where a kind's list is rendered
func ListContainer(kind string) string { return kind + "s-list" }

// FormContainer is where a kind's create form is rendered
func FormContainer(kind string) string { return "add-" + kind + "-form" }

// ModalContainer is where a kind's edit dialog is rendered
func ModalContainer(kind string) string { return "edit-" + kind + "-modal" }

// Surface is the render capability handed to controllers. Render
// replaces whatever the container held.
type Surface interface {
	Render(container string, m Model)
	Mounted(container string) bool
	Mount(container string)
	Unmount(container string)
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Answer is a Confirmer with a fixed reply, for callers that already asked
type Answer bool

func (a Answer) Confirm(string) bool { return bool(a) }
