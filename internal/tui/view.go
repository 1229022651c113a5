package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 {
		return "loading…"
	}
	ctrl := m.view.Controller()

	header := titleStyle.Render(" "+m.name) +
		dimStyle.Render(fmt.Sprintf("  %s · %s · %d objects", ctrl.Mode(), ctrl.DrawKind(), m.cv.Len()))

	shown := m.err
	buf := newBrailleBuf(m.mapW, m.mapH)
	if err := m.view.Render(brailleRenderer{buf: buf}); err != nil {
		shown = err
	}
	body := strings.Join(buf.toLines(), "\n")
	if m.showObjects {
		side := boxStyle.Width(sidebarWidth - 4).Height(m.mapH - 2).Render(m.tbl.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", side)
	}

	status := dimStyle.Render(m.status)
	if m.events.last != "" {
		status = dimStyle.Render(m.events.last)
	}
	if shown != nil {
		status = errStyle.Render(shown.Error())
	}
	if m.hovering {
		cur := dimStyle.Render(m.view.FormatCursor(m.hover))
		gap := max(1, m.width-lipgloss.Width(status)-lipgloss.Width(cur))
		status += strings.Repeat(" ", gap) + cur
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		status,
		m.help.View(m.keys),
	))
}
