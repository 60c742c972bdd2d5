package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/fetchr/internal/executor"
	"github.com/studiowebux/fetchr/internal/store"
	"github.com/studiowebux/fetchr/internal/tree"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed   = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorGray  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan  = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Underline(true)
)

func (m *Model) sidebarWidth() int {
	w := m.width * 35 / 100
	if w < 30 {
		w = 30
	}
	return w
}

func (m *Model) responseWidth() int {
	w := m.width - m.sidebarWidth() - 6
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) responseHeight() int {
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	return h
}

func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.mode {
	case ModeEnvPicker:
		return m.renderEnvPicker()
	case ModeHistory:
		return m.renderHistory()
	case ModeHelp:
		return m.renderHelp()
	}

	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Width(m.sidebarWidth()).
		Height(m.height - 2).
		Render(m.renderTree())

	right := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabBar(),
		m.renderEditor(),
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Width(m.responseWidth()+2).
			Render(m.responseView.View()),
	)

	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, right)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m *Model) renderTree() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Collections"))
	b.WriteString("\n")

	visible := m.height - 5
	if visible < 1 {
		visible = 1
	}
	if m.treeIndex < m.treeOffset {
		m.treeOffset = m.treeIndex
	}
	if m.treeIndex >= m.treeOffset+visible {
		m.treeOffset = m.treeIndex - visible + 1
	}

	end := m.treeOffset + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.treeOffset; i < end; i++ {
		row := m.rows[i]
		line := strings.Repeat("  ", row.depth)
		if row.node.Type == tree.NodeFolder {
			line += "▸ " + row.node.Label
		} else {
			line += fmt.Sprintf("%s %s", padMethod(row.node.Request.Method), row.node.Label)
		}
		if i == m.treeIndex {
			line = styleSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		b.WriteString(styleSubtle.Render("empty, press f to create a folder"))
	}
	return b.String()
}

func padMethod(method string) string {
	return fmt.Sprintf("%-6s", method)
}

func (m *Model) renderTabBar() string {
	var parts []string
	for i, tab := range m.tabs.Tabs() {
		label := tab.Name
		if tab.IsDirty {
			label += "*"
		}
		if tab.IsLoading {
			label += " …"
		}
		if i == m.tabs.ActiveIndex() {
			parts = append(parts, styleActiveTab.Render(label))
		} else {
			parts = append(parts, styleSubtle.Render(label))
		}
	}
	return " " + strings.Join(parts, "  ")
}

func (m *Model) renderEditor() string {
	tab := m.tabs.ActiveTab()
	draft := tab.Draft

	var b strings.Builder
	b.WriteString(fmt.Sprintf(" %s %s\n", styleTitle.Render(draft.Method), draft.URL))

	enabled := 0
	for _, h := range draft.Headers {
		if h.Enabled {
			enabled++
		}
	}
	meta := fmt.Sprintf(" headers: %d  body: %s  auth: %s", enabled, draft.BodyType, draft.AuthType)
	b.WriteString(styleSubtle.Render(meta))

	if m.mode == ModeSearch || m.mode == ModeEditURL || m.mode == ModeEditBody ||
		m.mode == ModeSaveName || m.mode == ModeNewFolder {
		b.WriteString("\n ")
		b.WriteString(m.input.View())
	}
	if m.mode == ModeConfirmDelete && m.deleteRow != nil {
		b.WriteString("\n ")
		b.WriteString(styleError.Render(fmt.Sprintf("delete %s? (y/n)", m.deleteRow.node.Label)))
	}
	return b.String()
}

func (m *Model) renderEnvPicker() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Environments"))
	b.WriteString("\n\n")

	envs := m.store.Environments()
	if len(envs) == 0 {
		b.WriteString(styleSubtle.Render("no environments"))
	}
	for i, env := range envs {
		line := "  " + env.Name
		if env.IsActive {
			line += styleSuccess.Render(" (active)")
		}
		if i == m.envIndex {
			line = styleSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render("enter: activate  esc: back"))
	return b.String()
}

func (m *Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("History"))
	b.WriteString("\n\n")

	entries := m.store.History()
	if len(entries) == 0 {
		b.WriteString(styleSubtle.Render("no history"))
	}
	for i, entry := range entries {
		status := styleSuccess
		if entry.Status >= 400 {
			status = styleError
		}
		line := fmt.Sprintf("  %s %s %s %s",
			status.Render(fmt.Sprintf("%d", entry.Status)),
			padMethod(entry.Method),
			entry.URL,
			styleSubtle.Render(executor.FormatDuration(entry.ResponseTime)))
		if i == m.historyIndex {
			line = styleSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render("C: clear  esc: back"))
	return b.String()
}

func (m *Model) renderHelp() string {
	help := `
 j/k       navigate tree
 enter     open request
 o         open in new tab
 /         fuzzy search, n/N cycle matches
 t ] [ x   new / next / previous / close tab
 m         cycle method
 e b B     edit url / edit body / cycle body type
 r         send request
 s         save request
 y         copy as curl
 f         new folder
 d         delete selection
 E         environments
 H         history
 q         quit
`
	return styleTitle.Render("Keys") + help
}

func (m *Model) renderStatusBar() string {
	if m.errorMsg != "" {
		return " " + styleError.Render(m.errorMsg)
	}
	if m.statusMsg != "" {
		return " " + styleSuccess.Render(m.statusMsg)
	}
	env := m.store.ActiveEnvironment()
	if env != nil {
		return " " + styleSubtle.Render("env: "+env.Name)
	}
	return " " + styleSubtle.Render("no active environment, press ? for help")
}

// Run starts the TUI on the alternate screen.
func Run(s *store.Store) error {
	program := tea.NewProgram(New(s), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
