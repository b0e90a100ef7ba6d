package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumen-ai/lumen/history"
)

type archiveItem struct {
	summary history.SessionSummary
}

func (h archiveItem) Title() string {
	return fmt.Sprintf("%s (%s)", h.summary.CreatedAt.Format("01/02 15:04"), h.summary.ModelRef)
}
func (h archiveItem) Description() string { return h.summary.Title }
func (h archiveItem) FilterValue() string { return h.summary.Title + " " + h.summary.ModelRef }

type archivePicker struct {
	list     list.Model
	selected *history.SessionSummary
	quitting bool
}

func newArchivePicker(sessions []history.SessionSummary) archivePicker {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = archiveItem{summary: s}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Archived Chats"
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFF")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	return archivePicker{list: l}
}

func (m archivePicker) Init() tea.Cmd {
	return nil
}

func (m archivePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			if i, ok := m.list.SelectedItem().(archiveItem); ok {
				m.selected = &i.summary
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		h, v := lipgloss.NewStyle().Margin(1, 2).GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m archivePicker) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(m.list.View())
}

// pickArchivedSession runs the picker and returns the chosen session, or nil
// when the user backed out.
func pickArchivedSession(sessions []history.SessionSummary) (*history.SessionSummary, error) {
	p := tea.NewProgram(newArchivePicker(sessions), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(archivePicker).selected, nil
}
