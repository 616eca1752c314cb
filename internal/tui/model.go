package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"thingstodo/internal/client"
)

type focusArea int

const (
	focusTitle focusArea = iota
	focusDueDate
	focusList
)

// changedMsg is delivered whenever the controller's list or draft changes.
type changedMsg struct{}

type statusMsg struct {
	text string
	err  bool
}

type Model struct {
	ctx        context.Context
	controller *client.Controller
	changes    <-chan struct{}

	title   textinput.Model
	dueDate textinput.Model

	focus     focusArea
	cursor    int
	width     int
	height    int
	status    string
	statusErr bool
}

func New(ctx context.Context, controller *client.Controller) Model {
	title := textinput.New()
	title.Placeholder = "What needs doing?"
	title.CharLimit = 200
	title.Width = 40
	title.Focus()

	dueDate := textinput.New()
	dueDate.Placeholder = "YYYY-MM-DD"
	dueDate.CharLimit = 25
	dueDate.Width = 12

	return Model{
		ctx:        ctx,
		controller: controller,
		changes:    controller.Subscribe(),
		title:      title,
		dueDate:    dueDate,
		focus:      focusTitle,
		status:     "Ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load(), waitForChange(m.changes))
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		if err := m.controller.Refresh(m.ctx); err != nil {
			return statusMsg{text: fmt.Sprintf("failed to fetch todos: %v", err), err: true}
		}

		return statusMsg{text: "Loaded"}
	}
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case changedMsg:
		m.clampCursor()
		return m, waitForChange(m.changes)
	case statusMsg:
		m.status = msg.text
		m.statusErr = msg.err
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.focus == focusList {
			return m.handleListKeys(msg)
		}

		return m.handleInputKeys(msg)
	default:
		return m, nil
	}
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.setFocus(m.focus + 1)
		return m, nil
	case "shift+tab":
		m.setFocus(focusList)
		return m, nil
	case "esc":
		m.setFocus(focusList)
		return m, nil
	case "enter":
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd

	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.dueDate, cmd = m.dueDate.Update(msg)
	}

	m.controller.SetDraft(client.Draft{Title: m.title.Value(), DueDate: m.dueDate.Value()})

	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "a":
		m.setFocus(focusTitle)
	case "shift+tab":
		m.setFocus(focusDueDate)
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "d", "x":
		m.deleteCurrent()
	case "r":
		m.status = "Refreshing..."
		m.statusErr = false
		return m, m.load()
	}

	return m, nil
}

func (m *Model) setFocus(focus focusArea) {
	if focus > focusList {
		focus = focusTitle
	}

	m.focus = focus
	m.title.Blur()
	m.dueDate.Blur()

	switch focus {
	case focusTitle:
		m.title.Focus()
	case focusDueDate:
		m.dueDate.Focus()
	}
}

func (m *Model) submit() {
	if _, ok := m.controller.Add(m.ctx, m.title.Value(), m.dueDate.Value()); !ok {
		m.status = "Title is required"
		m.statusErr = true
		return
	}

	m.title.Reset()
	m.dueDate.Reset()
	m.setFocus(focusTitle)
	m.cursor = 0
	m.status = "Adding..."
	m.statusErr = false
}

func (m *Model) deleteCurrent() {
	items := m.controller.Items()

	// The list may have shrunk since the last change message.
	if m.cursor >= len(items) {
		m.cursor = max(len(items)-1, 0)
	}

	if len(items) == 0 {
		m.status = "Nothing to delete"
		m.statusErr = true
		return
	}

	item := items[m.cursor]

	if !m.controller.Delete(m.ctx, item.Key) {
		m.status = "Still saving, try again in a moment"
		m.statusErr = true
		return
	}

	m.status = fmt.Sprintf("Deleted %q", item.Todo.Title)
	m.statusErr = false
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.controller.Items())

	if m.cursor >= n {
		m.cursor = n - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}
}
