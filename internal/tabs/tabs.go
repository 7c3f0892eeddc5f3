// Package tabs tracks the open documents, which one is active, and each
// tab's saved view so switching back restores the exact pan and zoom.
package tabs

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/zjrosen/flowlens/internal/log"
	"github.com/zjrosen/flowlens/internal/view"
	"github.com/zjrosen/flowlens/internal/workflow"
)

// Tab is one open document.
type Tab struct {
	ID         string
	SourcePath string
	Title      string
	Document   *workflow.Document
	// View holds the saved camera; nil until the user first changes it,
	// which signals the app to fit the document on activation.
	View *view.Camera
}

// Manager owns the tab list. Exactly one tab is active while the list is
// non-empty.
type Manager struct {
	tabs     []*Tab
	activeID string
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Open adds a tab for the document, or activates the existing tab when the
// path is already open. It reports whether a new tab was created.
func (m *Manager) Open(path string, doc *workflow.Document) (*Tab, bool) {
	if t := m.byPath(path); t != nil {
		m.activeID = t.ID
		log.Debug(log.CatTabs, "activated existing tab", "path", path, "id", t.ID)
		return t, false
	}
	t := &Tab{
		ID:         uuid.NewString(),
		SourcePath: path,
		Title:      filepath.Base(path),
		Document:   doc,
	}
	m.tabs = append(m.tabs, t)
	m.activeID = t.ID
	log.Debug(log.CatTabs, "opened tab", "path", path, "id", t.ID)
	return t, true
}

// Reload swaps in a fresh document for an open path, keeping the tab's
// saved view. It reports whether the path had a tab.
func (m *Manager) Reload(path string, doc *workflow.Document) bool {
	t := m.byPath(path)
	if t == nil {
		return false
	}
	t.Document = doc
	return true
}

// Active returns the active tab, or nil when the list is empty.
func (m *Manager) Active() *Tab {
	for _, t := range m.tabs {
		if t.ID == m.activeID {
			return t
		}
	}
	return nil
}

// Tabs returns the tabs in open order.
func (m *Manager) Tabs() []*Tab { return m.tabs }

// Len returns the number of open tabs.
func (m *Manager) Len() int { return len(m.tabs) }

// Activate makes the tab with the given id active. Unknown ids are ignored.
func (m *Manager) Activate(id string) {
	for _, t := range m.tabs {
		if t.ID == id {
			m.activeID = id
			return
		}
	}
}

// Next activates the tab after the active one, wrapping around.
func (m *Manager) Next() { m.step(1) }

// Prev activates the tab before the active one, wrapping around.
func (m *Manager) Prev() { m.step(-1) }

func (m *Manager) step(d int) {
	i := m.activeIndex()
	if i < 0 {
		return
	}
	n := len(m.tabs)
	m.activeID = m.tabs[((i+d)%n+n)%n].ID
}

// CloseActive removes the active tab. The neighbor that slid into its index
// becomes active, or the new last tab when the closed one was last.
func (m *Manager) CloseActive() {
	i := m.activeIndex()
	if i < 0 {
		return
	}
	closed := m.tabs[i]
	m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
	log.Debug(log.CatTabs, "closed tab", "path", closed.SourcePath, "id", closed.ID)

	if len(m.tabs) == 0 {
		m.activeID = ""
		return
	}
	if i >= len(m.tabs) {
		i = len(m.tabs) - 1
	}
	m.activeID = m.tabs[i].ID
}

// SaveView records the camera on the active tab.
func (m *Manager) SaveView(c view.Camera) {
	if t := m.Active(); t != nil {
		saved := c
		t.View = &saved
	}
}

// Paths returns the source paths of all open tabs, in open order.
func (m *Manager) Paths() []string {
	out := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = t.SourcePath
	}
	return out
}

func (m *Manager) byPath(path string) *Tab {
	for _, t := range m.tabs {
		if t.SourcePath == path {
			return t
		}
	}
	return nil
}

func (m *Manager) activeIndex() int {
	for i, t := range m.tabs {
		if t.ID == m.activeID {
			return i
		}
	}
	return -1
}
