package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"aniq/internal/models"
)

// keyMap defines the [key.Binding] mapping for the browser.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// BrowseModel is the bubbletea model for browsing one collection.
type BrowseModel struct {
	list list.Model
	keys keyMap
}

// NewBrowse creates a browser over the given collection.
func NewBrowse(title string, records []models.MediaRecord) BrowseModel {
	delegate := list.NewDefaultDelegate()
	l := list.New(mediaItems(records), delegate, 0, 0)
	l.Title = title
	l.Styles.Title = styles.title

	return BrowseModel{
		list: l,
		keys: newKeyMap(),
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		// Let the list's filter input capture keys first
		if m.list.FilterState() != list.Filtering && key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowseModel) View() string {
	return m.list.View()
}

// RunBrowse runs the browser until the user quits.
func RunBrowse(title string, records []models.MediaRecord) error {
	program := tea.NewProgram(NewBrowse(title, records), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
