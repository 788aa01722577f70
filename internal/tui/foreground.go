package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type foregroundType int

const (
	Help foregroundType = iota
	DatasetSelector
)

type foregroundModel struct {
	fgType          foregroundType
	help            help.Model
	datasetSelector *DatasetSelectorModel
}

func (h *foregroundModel) Init() tea.Cmd {
	h.help = help.New()
	h.help.ShowAll = true
	h.datasetSelector = NewDatasetSelectorModel()
	return nil
}

func (h *foregroundModel) Show(t foregroundType) {
	h.fgType = t
	if t == DatasetSelector {
		h.datasetSelector.Reload()
	}
}

func (h *foregroundModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message.(type) {
	case tea.KeyMsg:
		if h.fgType == DatasetSelector {
			_, cmd := h.datasetSelector.Update(message)
			return h, cmd
		}
	case datasetsResult:
		h.datasetSelector.Update(message)
	}
	return h, nil
}

func (h *foregroundModel) View() string {
	switch h.fgType {
	case Help:
		return h.renderHelpModal()
	case DatasetSelector:
		return h.datasetSelector.View()
	}
	return ""
}

func (h *foregroundModel) renderHelpModal() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Hilbert chart - Controls"),
		"",
		"Mouse: hover for tooltips, drag to pan, wheel to zoom, click to select",
		"",
		h.help.FullHelpView(keys.FullHelp()),
		"",
		hintStyle.Render("Press [Esc] to close this help"),
	)

	return modalStyle.
		MaxWidth(90).
		Align(lipgloss.Left).
		Render(content)
}
