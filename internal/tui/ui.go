// Package tui is a terminal viewer for live datasets.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

type quitMessage struct{}

type UIModel struct {
	apiHost           string
	dataset           string
	viewer            tea.Model
	foreground        *foregroundModel
	overlay           tea.Model
	foregroundVisible bool
}

func NewUIModel(apiHost, dataset string) *UIModel {
	return &UIModel{apiHost: apiHost, dataset: dataset}
}

func (m *UIModel) Init() tea.Cmd {
	cmds := []tea.Cmd{}

	m.viewer = newViewerModel(m.apiHost, m.dataset)
	cmds = append(cmds, m.viewer.Init())

	m.foreground = &foregroundModel{}
	cmds = append(cmds, m.foreground.Init())

	m.foregroundVisible = false
	m.overlay = overlay.New(m.foreground, m.viewer, overlay.Center, overlay.Center, 0, 0)
	cmds = append(cmds, m.overlay.Init())

	return tea.Batch(cmds...)
}

func (m *UIModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{}

	passToViewer := func() {
		vm, vmCmd := m.viewer.Update(message)
		m.viewer = vm
		cmds = append(cmds, vmCmd)
	}

	passToForeground := func() {
		_, fmCmd := m.foreground.Update(message)
		cmds = append(cmds, fmCmd)
	}

	switch msg := message.(type) {
	case datasetSelectedMessage:
		m.foregroundVisible = false
		passToViewer()
		return m, tea.Batch(cmds...)
	case datasetsResult:
		passToForeground()
		return m, tea.Batch(cmds...)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.viewer.Update(quitMessage{})
			return m, tea.Quit
		case key.Matches(msg, keys.Close):
			m.foregroundVisible = false
			return m, nil
		case key.Matches(msg, keys.Help):
			m.foregroundVisible = true
			m.foreground.Show(Help)
			return m, nil
		case key.Matches(msg, keys.Datasets):
			m.foregroundVisible = true
			m.foreground.Show(DatasetSelector)
			return m, listDatasets(m.apiHost)
		}
		if !m.foregroundVisible {
			passToViewer()
		} else {
			passToForeground()
		}
	case tea.MouseMsg:
		if !m.foregroundVisible {
			passToViewer()
		}
	default:
		passToViewer()
	}

	return m, tea.Batch(cmds...)
}

func (m *UIModel) View() string {
	if m.foregroundVisible {
		return m.overlay.View()
	}
	return m.viewer.View()
}
