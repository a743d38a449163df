package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// GroupListModel - Interactive group browser
// =============================================================================

// GroupListModel is the bubbletea model for browsing a group layout. The
// list view shows one row per group; enter opens the group's assets.
type GroupListModel struct {
	Layout  *grouplayout.Layout
	Catalog asset.Catalog
	Cursor  int
	Height  int
	Offset  int

	// Open is the group whose assets are shown, or nil in the list view.
	Open       *grouplayout.Group
	nodeOffset int
}

// NewGroupListModel creates a browser over l. cat may be nil, in which
// case assets are shown by GUID.
func NewGroupListModel(l *grouplayout.Layout, cat asset.Catalog) GroupListModel {
	return GroupListModel{Layout: l, Catalog: cat, Height: 15}
}

func (m GroupListModel) Init() tea.Cmd {
	return nil
}

func (m GroupListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Open != nil {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Layout.Order)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Layout.Order) > 0 {
				m.Open = m.Layout.Groups[m.Layout.Order[m.Cursor]]
				m.nodeOffset = 0
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m GroupListModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "backspace", "enter":
		m.Open = nil
	case "up", "k":
		if m.nodeOffset > 0 {
			m.nodeOffset--
		}
	case "down", "j":
		if m.nodeOffset < len(m.Open.Nodes)-1 {
			m.nodeOffset++
		}
	}
	return m, nil
}

func (m GroupListModel) View() string {
	if m.Open != nil {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Output Groups"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Layout.Order))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		g := m.Layout.Groups[m.Layout.Order[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, g.Name, g.Category.String(), g.Template, fmt.Sprint(len(g.Nodes)), formatBytes(g.SizeBytes)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Group", "Category", "Template", "Assets", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 || col == 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	s := m.Layout.Stats
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d assets · %d pooled chunks · %d oversized",
		m.Cursor+1, len(m.Layout.Order), s.Nodes, s.PooledChunks, s.Oversized)))
	return b.String()
}

func (m GroupListModel) detailView() string {
	g := m.Open
	var b strings.Builder
	b.WriteString(StyleTitle.Render(g.Name))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · %s · %s", g.Category, g.Template, formatBytes(g.SizeBytes))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scroll  ⏎/esc back  q quit"))
	b.WriteString("\n\n")

	end := min(m.nodeOffset+m.Height, len(g.Nodes))
	for _, id := range g.Nodes[m.nodeOffset:end] {
		line := m.Catalog.Path(id)
		if n, ok := m.Catalog.Size(id); ok {
			line += listDimStyle.Render("  " + formatBytes(n))
		}
		b.WriteString("  " + listNormalStyle.Render(line) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d-%d/%d]", min(m.nodeOffset+1, len(g.Nodes)), end, len(g.Nodes))))
	return b.String()
}
