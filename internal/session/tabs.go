package session

import (
	"github.com/google/uuid"
	"github.com/studiowebux/fetchr/internal/types"
)

const defaultTabName = "Untitled"

// Tab is one open editing session: a draft, its last response, and its
// dirty/binding state. RequestID is empty for unsaved drafts.
type Tab struct {
	ID        string
	Name      string
	Draft     types.RequestDraft
	Response  *types.HttpResponse
	RequestID string
	IsLoading bool
	IsDirty   bool
}

// Manager owns the ordered list of open tabs. Two invariants hold for the
// whole session: the list is never empty, and exactly one tab is active.
// The manager touches no persistence; it is in-memory state only.
type Manager struct {
	tabs   []Tab
	active int
}

// NewManager creates a manager holding a single default tab.
func NewManager() *Manager {
	return &Manager{
		tabs: []Tab{newTab("", nil)},
	}
}

func newTab(name string, from *types.Request) Tab {
	tab := Tab{
		ID:    uuid.NewString(),
		Name:  defaultTabName,
		Draft: types.NewDraft(),
	}
	if name != "" {
		tab.Name = name
	}
	if from != nil {
		tab.Name = from.Name
		tab.Draft = types.DraftFromRequest(from)
		tab.RequestID = from.ID
	}
	return tab
}

// Tabs returns the open tab list in order.
func (m *Manager) Tabs() []Tab {
	return m.tabs
}

// ActiveIndex returns the index of the active tab.
func (m *Manager) ActiveIndex() int {
	return m.active
}

// ActiveTab returns the active tab. The list is never empty, so this
// always returns a valid tab.
func (m *Manager) ActiveTab() *Tab {
	return &m.tabs[m.active]
}

// CreateTab appends a new tab and makes it active. When from is given the
// tab is hydrated from that saved request; otherwise it starts with the
// default empty draft.
func (m *Manager) CreateTab(name string, from *types.Request) *Tab {
	m.tabs = append(m.tabs, newTab(name, from))
	m.active = len(m.tabs) - 1
	return &m.tabs[m.active]
}

// OpenRequest opens a saved request, keeping at most one tab bound to a
// given request id. An already-open request activates its tab. Otherwise a
// new tab is created when forced, when the active tab is dirty, or when the
// active tab is bound to a different saved request; else the active tab is
// hydrated in place.
func (m *Manager) OpenRequest(req *types.Request, forceNewTab bool) *Tab {
	for i := range m.tabs {
		if m.tabs[i].RequestID == req.ID && req.ID != "" {
			m.active = i
			return &m.tabs[i]
		}
	}

	active := m.ActiveTab()
	if forceNewTab || active.IsDirty || (active.RequestID != "" && active.RequestID != req.ID) {
		return m.CreateTab(req.Name, req)
	}

	active.Name = req.Name
	active.Draft = types.DraftFromRequest(req)
	active.RequestID = req.ID
	active.Response = nil
	active.IsLoading = false
	active.IsDirty = false
	return active
}

// CloseTab closes the tab at index. The sole remaining tab is reset to the
// default draft instead of being removed. When a tab is removed the active
// index clamps to the last tab if needed, or shifts left when the removed
// tab preceded it.
func (m *Manager) CloseTab(index int) {
	if index < 0 || index >= len(m.tabs) {
		return
	}

	if len(m.tabs) == 1 {
		id := m.tabs[0].ID
		m.tabs[0] = newTab("", nil)
		m.tabs[0].ID = id
		return
	}

	m.tabs = append(m.tabs[:index], m.tabs[index+1:]...)
	if index < m.active {
		m.active--
	} else if m.active >= len(m.tabs) {
		m.active = len(m.tabs) - 1
	}
}

// SwitchTab activates the tab at index. Out-of-range indexes are ignored.
func (m *Manager) SwitchTab(index int) {
	if index < 0 || index >= len(m.tabs) {
		return
	}
	m.active = index
}

// UpdateDraft applies an edit to the active tab's draft and marks the tab
// dirty. Dirty is cleared only by MarkSaved, never automatically.
func (m *Manager) UpdateDraft(edit func(*types.RequestDraft)) {
	tab := m.ActiveTab()
	edit(&tab.Draft)
	tab.IsDirty = true
}

// MarkSaved binds the active tab to a persisted request after a successful
// save and clears its dirty flag.
func (m *Manager) MarkSaved(requestID, name string) {
	tab := m.ActiveTab()
	tab.RequestID = requestID
	if name != "" {
		tab.Name = name
	}
	tab.IsDirty = false
}

// SetLoading flips the active tab's loading flag.
func (m *Manager) SetLoading(loading bool) {
	m.ActiveTab().IsLoading = loading
}

// SetResponse records a settled response on the tab with the given id and
// clears its loading flag. The tab may no longer be active, or may have
// been closed, by the time the response arrives.
func (m *Manager) SetResponse(tabID string, resp *types.HttpResponse) {
	for i := range m.tabs {
		if m.tabs[i].ID == tabID {
			m.tabs[i].Response = resp
			m.tabs[i].IsLoading = false
			return
		}
	}
}

// DropRequest unbinds every tab bound to a deleted request id, resetting
// its draft to defaults.
func (m *Manager) DropRequest(requestID string) {
	if requestID == "" {
		return
	}
	for i := range m.tabs {
		if m.tabs[i].RequestID == requestID {
			m.tabs[i].Draft = types.NewDraft()
			m.tabs[i].RequestID = ""
			m.tabs[i].Name = defaultTabName
			m.tabs[i].Response = nil
			m.tabs[i].IsDirty = false
		}
	}
}
