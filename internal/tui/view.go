package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"thingstodo/internal/client"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "212"}).
			Bold(true).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "212"}).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "236", Dark: "252"})

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "196"})

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "241"})

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "230", Dark: "230"}).
			Background(lipgloss.AdaptiveColor{Light: "25", Dark: "61"}).
			Bold(true).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "196"}).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "212"}).
			Bold(true)
)

func helpKey(key, desc string) string {
	return keyStyle.Render(key) + " " + mutedStyle.Render(desc)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Things To Do"))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Title ") + m.title.View())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Due   ") + m.dueDate.View())
	b.WriteString("\n\n")

	b.WriteString(m.listView(time.Now()))
	b.WriteString("\n")

	status := m.status
	if m.statusErr {
		status = errorStyle.Render(status)
	}
	b.WriteString(status)
	b.WriteString("\n")

	help := []string{helpKey("enter", "add"), helpKey("tab", "switch")}
	if m.focus == focusList {
		help = append(help, helpKey("j/k", "nav"), helpKey("d", "delete"), helpKey("r", "refresh"), helpKey("q", "quit"))
	} else {
		help = append(help, helpKey("esc", "list"))
	}
	b.WriteString(strings.Join(help, "  "))

	return b.String()
}

func (m Model) listView(now time.Time) string {
	items := m.controller.Items()
	if len(items) == 0 {
		return mutedStyle.Render("Nothing to do.")
	}

	lines := make([]string, 0, len(items))

	for i, item := range items {
		lines = append(lines, m.itemLines(item, i == m.cursor && m.focus == focusList, now)...)
	}

	return strings.Join(lines, "\n")
}

func (m Model) itemLines(item client.Item, selected bool, now time.Time) []string {
	prefix := "  "
	style := normalStyle

	if selected {
		prefix = "> "
		style = selectedStyle
	}

	if item.IsOverdue(now) {
		style = overdueStyle.Bold(selected)
	}

	title := item.Todo.Title
	if item.Todo.DueDate != nil {
		title = fmt.Sprintf("%s  (due %s)", title, item.Todo.DueDate.Format("2006-01-02"))
	}

	lines := []string{prefix + style.Render(title)}

	switch {
	case item.Loading:
		lines = append(lines, "    "+mutedStyle.Render("fetching image…"))
	case item.Todo.ImageURL != nil:
		image := *item.Todo.ImageURL
		if item.Todo.ImageAlt != nil && *item.Todo.ImageAlt != "" {
			image = fmt.Sprintf("%s (%s)", *item.Todo.ImageAlt, image)
		}
		lines = append(lines, "    "+mutedStyle.Render(image))
	}

	return lines
}
