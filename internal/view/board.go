package view

import "sync"

// Board is an in-memory Surface. The terminal UI reads from it and tests
// use it to observe what controllers rendered.
type Board struct {
	mu      sync.RWMutex
	mounted map[string]bool
	latest  map[string]Model
	history map[string][]Model
	record  bool
	version uint64
}

// NewBoard creates a board with containers already mounted
func NewBoard(containers ...string) *Board {
	b := &Board{
		mounted: map[string]bool{},
		latest:  map[string]Model{},
		history: map[string][]Model{},
	}
	for _, c := range containers {
		b.mounted[c] = true
	}
	return b
}

// NewRecorder is a board that also keeps every render per container
func NewRecorder(containers ...string) *Board {
	b := NewBoard(containers...)
	b.record = true
	return b
}

// Render replaces the container's content. Renders into unmounted
// containers are dropped.
func (b *Board) Render(container string, m Model) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mounted[container] {
		return
	}
	b.latest[container] = m
	if b.record {
		b.history[container] = append(b.history[container], m)
	}
	b.version++
}

// Mounted reports whether the container is on screen
func (b *Board) Mounted(container string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mounted[container]
}

// Mount puts the container on screen
func (b *Board) Mount(container string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mounted[container] = true
	b.version++
}

// Unmount removes the container and its content
func (b *Board) Unmount(container string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.mounted, container)
	delete(b.latest, container)
	b.version++
}

// Latest returns the container's current content
func (b *Board) Latest(container string) (Model, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.latest[container]
	return m, ok
}

// History returns every render into container, oldest first. Only
// recorders keep history.
func (b *Board) History(container string) []Model {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Model(nil), b.history[container]...)
}

// Version changes whenever anything on the board changes
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LatestAs returns the container's content if it has type M
func LatestAs[M Model](b *Board, container string) (M, bool) {
	var zero M
	m, ok := b.Latest(container)
	if !ok {
		return zero, false
	}
	typed, ok := m.(M)
	return typed, ok
}

// HistoryOf returns the renders of type M into container
func HistoryOf[M Model](b *Board, container string) []M {
	var out []M
	for _, m := range b.History(container) {
		if typed, ok := m.(M); ok {
			out = append(out, typed)
		}
	}
	return out
}
