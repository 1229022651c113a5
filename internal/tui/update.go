package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/interact"
)

const (
	panCells   = 8
	zoomStep   = 1.25
	rotateStep = 15.0
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		if !m.fitted {
			m.fitted = true
			m.setErr(m.view.ZoomFit())
		}
		return m, nil

	case tea.MouseMsg:
		return m.mouse(msg), nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.Close()
			return m, tea.Quit
		}
		if m.showObjects && msg.String() == "enter" {
			m.selectRow()
			return m, nil
		}
		if m.showObjects && (msg.String() == "up" || msg.String() == "down") {
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}
		return m.keypress(msg), nil
	}
	return m, nil
}

func (m *Model) setErr(err error) {
	m.err = err
}

// input feeds a bound host input to the viewer.
func (m *Model) input(name string, p vec.Vec2, modifier bool) {
	if _, err := m.view.Input(name, p, modifier); err != nil {
		m.err = err
		return
	}
	m.err = nil
	if m.showObjects {
		m.refreshObjects()
	}
}

func (m Model) mouse(msg tea.MouseMsg) Model {
	p, ok := m.windowPoint(msg.X, msg.Y)
	if !ok {
		// A drag leaving the map still has to end.
		if msg.Action == tea.MouseActionRelease {
			m.input("cursor-up", m.hover, false)
		}
		return m
	}
	m.hover, m.hovering = p, true
	mod := msg.Shift || msg.Ctrl

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.zoom(zoomStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.zoom(1 / zoomStep)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.input("cursor-down", p, mod)
	case msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonLeft:
		m.input("cursor-move", p, mod)
	case msg.Action == tea.MouseActionRelease:
		m.input("cursor-up", p, mod)
	}
	return m
}

func (m *Model) zoom(f float64) {
	m.setErr(m.view.SetZoom(m.view.Zoom() * f))
}

// pan shifts the view by a number of cells.
func (m *Model) pan(cx, cy int) {
	wd, ht := m.view.WindowSize()
	mid := vec.Vec2{X: wd / 2, Y: ht / 2}
	to := vec.Vec2{X: mid.X + float64(cx*dotsX), Y: mid.Y + float64(cy*dotsY)}
	a, b := m.view.CanvasToData(mid), m.view.CanvasToData(to)
	m.view.SetPan(m.view.Pan().Add(b.Sub(a)))
}

func (m Model) keypress(msg tea.KeyMsg) Model {
	ctrl := m.view.Controller()
	switch {
	case key.Matches(msg, m.keys.Draw):
		m.setErr(ctrl.SetMode(interact.ModeDraw))
	case key.Matches(msg, m.keys.Edit):
		m.setErr(ctrl.SetMode(interact.ModeEdit))
	case key.Matches(msg, m.keys.Kind):
		if len(m.kinds) > 0 {
			i := slices.Index(m.kinds, ctrl.DrawKind())
			m.setErr(ctrl.SetDrawKind(m.kinds[(i+1)%len(m.kinds)]))
		}
	case key.Matches(msg, m.keys.AddVertex):
		if m.hovering {
			m.input("key-v", m.hover, false)
		}
	case key.Matches(msg, m.keys.DelVertex):
		if m.hovering {
			m.input("key-z", m.hover, false)
		}
	case key.Matches(msg, m.keys.Delete):
		n := m.cv.DeleteByTags(ctrl.Selection())
		m.status = fmt.Sprintf("deleted %d object(s)", n)
	case key.Matches(msg, m.keys.Up):
		m.pan(0, -panCells)
	case key.Matches(msg, m.keys.Down):
		m.pan(0, panCells)
	case key.Matches(msg, m.keys.Left):
		m.pan(-panCells, 0)
	case key.Matches(msg, m.keys.Right):
		m.pan(panCells, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(zoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(1 / zoomStep)
	case key.Matches(msg, m.keys.Fit):
		m.setErr(m.view.ZoomFit())
	case key.Matches(msg, m.keys.Rotate):
		m.view.SetRotation(m.view.Rotation() + rotateStep)
	case key.Matches(msg, m.keys.Objects):
		m.showObjects = !m.showObjects
		m.layout()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	if m.showObjects {
		m.refreshObjects()
	}
	return m
}

// selectRow selects the object under the table cursor and switches to
// edit mode so it can be dragged.
func (m *Model) selectRow() {
	row := m.tbl.SelectedRow()
	if len(row) == 0 {
		return
	}
	ctrl := m.view.Controller()
	ctrl.ClearSelection()
	if err := ctrl.Select(row[0]); err != nil {
		m.err = err
		return
	}
	m.setErr(ctrl.SetMode(interact.ModeEdit))
	m.refreshObjects()
}
