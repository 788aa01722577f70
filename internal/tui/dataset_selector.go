package tui

import (
	"fmt"
	"strings"

	"github.com/JackWithOneEye/hilbertchart/internal/database"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type datasetSelectedMessage struct {
	name string
}

type DatasetSelectorModel struct {
	datasets     []database.Summary
	err          error
	loading      bool
	selected     int
	scrollOffset int
	viewHeight   int
}

func NewDatasetSelectorModel() *DatasetSelectorModel {
	return &DatasetSelectorModel{viewHeight: 12}
}

func (m *DatasetSelectorModel) Init() tea.Cmd {
	return nil
}

// Reload marks the list as loading until the next datasetsResult.
func (m *DatasetSelectorModel) Reload() {
	m.loading = true
	m.err = nil
}

func (m *DatasetSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case datasetsResult:
		m.loading = false
		m.err = msg.Err
		m.datasets = msg.Datasets
		m.selected = min(m.selected, max(0, len(m.datasets)-1))
		m.scrollOffset = min(m.scrollOffset, m.selected)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.SelectUp):
			m.moveUp()
		case key.Matches(msg, keys.SelectDn):
			m.moveDown()
		case key.Matches(msg, keys.SelectOne):
			if len(m.datasets) > 0 {
				name := m.datasets[m.selected].Name
				return m, func() tea.Msg {
					return datasetSelectedMessage{name: name}
				}
			}
		}
	}
	return m, nil
}

func (m *DatasetSelectorModel) moveUp() {
	if m.selected > 0 {
		m.selected--
		if m.selected < m.scrollOffset {
			m.scrollOffset = m.selected
		}
	}
}

func (m *DatasetSelectorModel) moveDown() {
	if m.selected < len(m.datasets)-1 {
		m.selected++
		if m.selected >= m.scrollOffset+m.viewHeight {
			m.scrollOffset = m.selected - m.viewHeight + 1
		}
	}
}

func (m *DatasetSelectorModel) View() string {
	style := modalStyle.Width(50)
	switch {
	case m.loading:
		return style.Render("Loading datasets...")
	case m.err != nil:
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case len(m.datasets) == 0:
		return style.Render("No datasets available")
	}

	var list strings.Builder
	list.WriteString("Select a Dataset\n")

	if m.scrollOffset > 0 {
		list.WriteString(hintStyle.Render("↑") + "\n")
	} else {
		list.WriteString("\n")
	}

	end := min(m.scrollOffset+m.viewHeight, len(m.datasets))
	for i := m.scrollOffset; i < end; i++ {
		d := m.datasets[i]
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(modalFg)
		if i == m.selected {
			prefix = "▶ "
			style = style.Foreground(successFg).Bold(true)
		}
		list.WriteString(style.Render(fmt.Sprintf("%s%-24s order %-2d %6d ranges", prefix, d.Name, d.Order, d.Ranges)) + "\n")
	}

	if end < len(m.datasets) {
		list.WriteString(hintStyle.Render("↓"))
	}

	list.WriteString(hintStyle.Render("\n\nPress [Enter] to open, [Esc] to close"))

	return style.Render(list.String())
}
