// Package tui is the interactive terminal frontend: a collection tree, a
// tab bar with a request editor, and a response pane.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/fetchr/internal/curl"
	"github.com/studiowebux/fetchr/internal/executor"
	"github.com/studiowebux/fetchr/internal/session"
	"github.com/studiowebux/fetchr/internal/store"
	"github.com/studiowebux/fetchr/internal/tree"
	"github.com/studiowebux/fetchr/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeEditURL
	ModeEditBody
	ModeSaveName
	ModeNewFolder
	ModeEnvPicker
	ModeHistory
	ModeConfirmDelete
	ModeHelp
)

// methods is the cycle order for the method key.
var methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// treeRow is one visible line of the flattened collection tree.
type treeRow struct {
	node  tree.Node
	depth int
}

// Model represents the TUI state. It owns the store and the tab session;
// there is no package-level state.
type Model struct {
	store *store.Store
	tabs  *session.Manager

	// Tree pane
	rows          []treeRow
	treeIndex     int
	treeOffset    int
	searchMatches []int // row indices matching the search query
	searchCursor  int   // position within searchMatches

	// Pickers
	envIndex     int
	historyIndex int

	// Pending delete target, set when entering ModeConfirmDelete
	deleteRow *treeRow

	mode         Mode
	input        textinput.Model
	responseView viewport.Model

	width     int
	height    int
	statusMsg string
	errorMsg  string
}

// New builds the model over an already-loaded store.
func New(s *store.Store) *Model {
	input := textinput.New()
	input.CharLimit = 512

	m := &Model{
		store: s,
		tabs:  session.NewManager(),
		input: input,
	}
	m.refreshTree()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// refreshTree reflattens the store's tree after any collection mutation.
// The selection clamps rather than resets so deletes keep the cursor near
// its old position.
func (m *Model) refreshTree() {
	m.rows = flattenTree(m.store.Tree(), 0)
	if m.treeIndex >= len(m.rows) {
		m.treeIndex = len(m.rows) - 1
	}
	if m.treeIndex < 0 {
		m.treeIndex = 0
	}
}

func flattenTree(nodes []tree.Node, depth int) []treeRow {
	var rows []treeRow
	for _, node := range nodes {
		rows = append(rows, treeRow{node: node, depth: depth})
		rows = append(rows, flattenTree(node.Children, depth+1)...)
	}
	return rows
}

// Messages

type responseMsg struct {
	tabID string
	resp  *types.HttpResponse
	err   error
}

type errorMsg string

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.responseView = viewport.New(m.responseWidth(), m.responseHeight())
		if tab := m.tabs.ActiveTab(); tab.Response != nil {
			m.responseView.SetContent(renderResponseBody(tab.Response))
		}
		return m, nil

	case responseMsg:
		m.tabs.SetResponse(msg.tabID, msg.resp)
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			m.statusMsg = ""
			return m, nil
		}
		m.errorMsg = ""
		m.statusMsg = fmt.Sprintf("%d %s in %s",
			msg.resp.Status, msg.resp.StatusText, executor.FormatDuration(msg.resp.ResponseTime))
		if tab := m.tabs.ActiveTab(); tab.ID == msg.tabID {
			m.responseView.SetContent(renderResponseBody(msg.resp))
			m.responseView.GotoTop()
		}
		return m, nil

	case errorMsg:
		m.errorMsg = string(msg)
		m.statusMsg = ""
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeSearch, ModeEditURL, ModeEditBody, ModeSaveName, ModeNewFolder:
		return m.handleInputKey(msg)
	case ModeEnvPicker:
		return m.handleEnvPickerKey(msg)
	case ModeHistory:
		return m.handleHistoryKey(msg)
	case ModeConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	}
	return m.handleNormalKey(msg)
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.treeIndex < len(m.rows)-1 {
			m.treeIndex++
		}

	case "k", "up":
		if m.treeIndex > 0 {
			m.treeIndex--
		}

	case "enter":
		return m, m.openSelected(false)

	case "o":
		return m, m.openSelected(true)

	case "/":
		m.mode = ModeSearch
		m.input.Placeholder = "search"
		m.input.SetValue("")
		m.input.Focus()

	case "n":
		m.jumpToMatch(1)

	case "N":
		m.jumpToMatch(-1)

	case "t":
		m.tabs.CreateTab("", nil)
		m.syncResponseView()

	case "]", "tab":
		m.tabs.SwitchTab(m.tabs.ActiveIndex() + 1)
		m.syncResponseView()

	case "[", "shift+tab":
		m.tabs.SwitchTab(m.tabs.ActiveIndex() - 1)
		m.syncResponseView()

	case "x":
		m.tabs.CloseTab(m.tabs.ActiveIndex())
		m.syncResponseView()

	case "m":
		m.tabs.UpdateDraft(func(d *types.RequestDraft) {
			d.Method = nextMethod(d.Method)
		})

	case "e":
		m.mode = ModeEditURL
		m.input.Placeholder = "url"
		m.input.SetValue(m.tabs.ActiveTab().Draft.URL)
		m.input.Focus()

	case "b":
		m.mode = ModeEditBody
		m.input.Placeholder = "body"
		m.input.SetValue(m.tabs.ActiveTab().Draft.Body)
		m.input.Focus()

	case "B":
		m.tabs.UpdateDraft(func(d *types.RequestDraft) {
			d.BodyType = nextBodyType(d.BodyType)
		})

	case "r":
		return m, m.sendActive()

	case "s":
		return m, m.saveActive()

	case "f":
		m.mode = ModeNewFolder
		m.input.Placeholder = "folder name"
		m.input.SetValue("")
		m.input.Focus()

	case "d":
		if m.treeIndex < len(m.rows) {
			row := m.rows[m.treeIndex]
			m.deleteRow = &row
			m.mode = ModeConfirmDelete
		}

	case "E":
		m.envIndex = 0
		m.mode = ModeEnvPicker

	case "H":
		m.historyIndex = 0
		m.mode = ModeHistory

	case "y":
		cmd := curl.Generate(m.tabs.ActiveTab().Draft)
		if err := clipboard.WriteAll(cmd); err != nil {
			m.errorMsg = fmt.Sprintf("failed to copy to clipboard: %v", err)
		} else {
			m.statusMsg = "curl command copied"
			m.errorMsg = ""
		}

	case "?":
		m.mode = ModeHelp

	case "ctrl+d":
		m.responseView.HalfViewDown()

	case "ctrl+u":
		m.responseView.HalfViewUp()
	}

	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()
		return m.commitInput(mode, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == ModeSearch {
		m.applySearch(m.input.Value())
	}
	return m, cmd
}

func (m *Model) commitInput(mode Mode, value string) (tea.Model, tea.Cmd) {
	switch mode {
	case ModeSearch:
		m.jumpToMatch(0)

	case ModeEditURL:
		m.tabs.UpdateDraft(func(d *types.RequestDraft) { d.URL = value })

	case ModeEditBody:
		m.tabs.UpdateDraft(func(d *types.RequestDraft) { d.Body = value })

	case ModeSaveName:
		if value == "" {
			return m, nil
		}
		return m, m.saveActiveAs(value)

	case ModeNewFolder:
		if value == "" {
			return m, nil
		}
		parentID := m.selectedFolderID()
		if _, err := m.store.CreateCollection(value, parentID, true); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.refreshTree()
		m.statusMsg = fmt.Sprintf("created folder %s", value)
	}
	return m, nil
}

func (m *Model) handleEnvPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	envs := m.store.Environments()
	switch msg.String() {
	case "esc", "q":
		m.mode = ModeNormal
	case "j", "down":
		if m.envIndex < len(envs)-1 {
			m.envIndex++
		}
	case "k", "up":
		if m.envIndex > 0 {
			m.envIndex--
		}
	case "enter":
		if m.envIndex < len(envs) {
			if err := m.store.SetActiveEnvironment(envs[m.envIndex].ID); err != nil {
				m.errorMsg = err.Error()
			} else {
				m.statusMsg = fmt.Sprintf("environment %s active", envs[m.envIndex].Name)
				m.errorMsg = ""
			}
		}
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.store.History()
	switch msg.String() {
	case "esc", "q":
		m.mode = ModeNormal
	case "j", "down":
		if m.historyIndex < len(entries)-1 {
			m.historyIndex++
		}
	case "k", "up":
		if m.historyIndex > 0 {
			m.historyIndex--
		}
	case "C":
		if err := m.store.ClearHistory(); err != nil {
			m.errorMsg = err.Error()
		} else {
			m.historyIndex = 0
			m.statusMsg = "history cleared"
		}
	}
	return m, nil
}

func (m *Model) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	defer func() {
		m.deleteRow = nil
		m.mode = ModeNormal
	}()

	if msg.String() != "y" || m.deleteRow == nil {
		return m, nil
	}

	row := *m.deleteRow
	switch row.node.Type {
	case tree.NodeRequest:
		id := row.node.Request.ID
		if err := m.store.DeleteRequest(id); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.tabs.DropRequest(id)
		m.statusMsg = fmt.Sprintf("deleted %s", row.node.Label)
	case tree.NodeFolder:
		if err := m.store.DeleteCollection(row.node.Collection.ID); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("deleted %s", row.node.Label)
	}
	m.refreshTree()
	m.syncResponseView()
	return m, nil
}

// openSelected opens the request under the cursor into a tab.
func (m *Model) openSelected(forceNewTab bool) tea.Cmd {
	if m.treeIndex >= len(m.rows) {
		return nil
	}
	row := m.rows[m.treeIndex]
	if row.node.Type != tree.NodeRequest {
		return nil
	}

	req, err := m.store.GetRequest(row.node.Request.ID)
	if err != nil {
		return func() tea.Msg { return errorMsg(err.Error()) }
	}
	if req == nil {
		return func() tea.Msg { return errorMsg("request no longer exists") }
	}
	m.tabs.OpenRequest(req, forceNewTab)
	m.syncResponseView()
	return nil
}

// sendActive dispatches the active tab's draft asynchronously. The
// response is delivered by tab id since the user may switch or close tabs
// while the request is in flight.
func (m *Model) sendActive() tea.Cmd {
	tab := m.tabs.ActiveTab()
	if tab.Draft.URL == "" {
		return func() tea.Msg { return errorMsg("no URL set") }
	}

	m.tabs.SetLoading(true)
	m.statusMsg = "sending..."
	m.errorMsg = ""

	tabID := tab.ID
	draft := tab.Draft
	s := m.store
	return func() tea.Msg {
		resp, err := s.Send(context.Background(), draft)
		return responseMsg{tabID: tabID, resp: resp, err: err}
	}
}

// saveActive persists the active tab's draft, prompting for a name first
// when the tab is not yet bound to a saved request.
func (m *Model) saveActive() tea.Cmd {
	tab := m.tabs.ActiveTab()
	if tab.RequestID == "" {
		m.mode = ModeSaveName
		m.input.Placeholder = "request name"
		m.input.SetValue(tab.Name)
		m.input.Focus()
		return nil
	}

	req, err := m.store.GetRequest(tab.RequestID)
	if err != nil || req == nil {
		return func() tea.Msg { return errorMsg("saved request no longer exists") }
	}
	if _, err := m.store.SaveDraft(tab.Draft, tab.RequestID, req.CollectionID, tab.Name); err != nil {
		return func() tea.Msg { return errorMsg(err.Error()) }
	}
	m.tabs.MarkSaved(tab.RequestID, tab.Name)
	m.refreshTree()
	m.statusMsg = fmt.Sprintf("saved %s", tab.Name)
	return nil
}

func (m *Model) saveActiveAs(name string) tea.Cmd {
	collectionID := m.selectedFolderID()
	if collectionID == nil {
		// Saving needs a destination; create one rather than failing.
		col, err := m.store.CreateCollection("Default", nil, true)
		if err != nil {
			return func() tea.Msg { return errorMsg(err.Error()) }
		}
		collectionID = &col.ID
	}

	tab := m.tabs.ActiveTab()
	saved, err := m.store.SaveDraft(tab.Draft, "", *collectionID, name)
	if err != nil {
		return func() tea.Msg { return errorMsg(err.Error()) }
	}
	m.tabs.MarkSaved(saved.ID, name)
	m.refreshTree()
	m.statusMsg = fmt.Sprintf("saved %s", name)
	return nil
}

// selectedFolderID returns the folder under or above the cursor, or nil
// when the tree is empty.
func (m *Model) selectedFolderID() *string {
	for i := m.treeIndex; i >= 0 && i < len(m.rows); i-- {
		row := m.rows[i]
		if row.node.Type == tree.NodeFolder {
			id := row.node.Collection.ID
			return &id
		}
		if row.node.Type == tree.NodeRequest {
			id := row.node.Request.CollectionID
			return &id
		}
	}
	return nil
}

func (m *Model) applySearch(query string) {
	m.searchMatches = nil
	m.searchCursor = 0
	if query == "" {
		return
	}
	labels := make([]string, len(m.rows))
	for i, row := range m.rows {
		labels[i] = row.node.Label
	}
	for _, match := range fuzzy.Find(query, labels) {
		m.searchMatches = append(m.searchMatches, match.Index)
	}
}

// jumpToMatch moves the cursor through search matches; delta 0 jumps to
// the best match, +1/-1 cycle forward and back.
func (m *Model) jumpToMatch(delta int) {
	if len(m.searchMatches) == 0 {
		return
	}
	m.searchCursor = (m.searchCursor + delta + len(m.searchMatches)) % len(m.searchMatches)
	m.treeIndex = m.searchMatches[m.searchCursor]
}

func (m *Model) syncResponseView() {
	tab := m.tabs.ActiveTab()
	if tab.Response == nil {
		m.responseView.SetContent("")
		return
	}
	m.responseView.SetContent(renderResponseBody(tab.Response))
	m.responseView.GotoTop()
}

func nextMethod(current string) string {
	for i, method := range methods {
		if method == current {
			return methods[(i+1)%len(methods)]
		}
	}
	return methods[0]
}

func nextBodyType(current string) string {
	order := []string{types.BodyNone, types.BodyJSON, types.BodyForm, types.BodyRaw}
	for i, bt := range order {
		if bt == current {
			return order[(i+1)%len(order)]
		}
	}
	return types.BodyNone
}

func renderResponseBody(resp *types.HttpResponse) string {
	var b strings.Builder
	for key, value := range resp.Headers {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	if len(resp.Headers) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(resp.Body)
	return b.String()
}
