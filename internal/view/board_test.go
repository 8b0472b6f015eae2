package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardDropsUnmounted(t *testing.T) {
	b := NewRecorder(ListContainer("task"))

	b.Render(ListContainer("task"), ListView{Kind: "task", State: StateLoading})
	b.Render(ModalContainer("task"), ModalView{Kind: "task"})

	_, ok := b.Latest(ModalContainer("task"))
	assert.False(t, ok)
	assert.Len(t, b.History(ListContainer("task")), 1)

	b.Mount(ModalContainer("task"))
	b.Render(ModalContainer("task"), ModalView{Kind: "task", ID: "t1"})
	modal, ok := LatestAs[ModalView](b, ModalContainer("task"))
	require.True(t, ok)
	assert.Equal(t, "t1", modal.ID)

	b.Unmount(ModalContainer("task"))
	assert.False(t, b.Mounted(ModalContainer("task")))
	_, ok = b.Latest(ModalContainer("task"))
	assert.False(t, ok)
}

func TestBoardVersion(t *testing.T) {
	b := NewBoard(NoticeContainer)
	v := b.Version()
	b.Render(NoticeContainer, Notice{Text: "hi"})
	assert.Greater(t, b.Version(), v)

	// plain boards keep no history
	assert.Empty(t, b.History(NoticeContainer))
}

func TestHistoryOf(t *testing.T) {
	b := NewRecorder(NoticeContainer)
	b.Render(NoticeContainer, Notice{Level: LevelError, Text: "a"})
	b.Render(NoticeContainer, Notice{Level: LevelSuccess, Text: "b"})

	notices := HistoryOf[Notice](b, NoticeContainer)
	require.Len(t, notices, 2)
	assert.Equal(t, "b", notices[1].Text)
}

func TestWriteList(t *testing.T) {
	var buf bytes.Buffer
	err := WriteList(&buf, ListView{State: StateReady, Cards: []Card{{
		ID:     "t1",
		Title:  "Write report",
		Badges: []Badge{{Text: "HIGH"}},
		Lines:  []Line{{Label: "Due", Value: "No due date"}},
	}}})
	require.NoError(t, err)
	assert.Equal(t, "Write report [HIGH]  (t1)\n  Due: No due date\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteList(&buf, ListView{State: StateEmpty, Message: "No tasks found."}))
	assert.Equal(t, "No tasks found.\n", buf.String())
}
