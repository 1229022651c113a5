// Package tui is a terminal host for a canvas: a bubbletea program that
// draws the scene in braille dots and feeds mouse input to the controller.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/interact"
	"github.com/inamate/skycanvas/internal/notify"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/viewer"
)

const (
	headerHeight = 1
	footerHeight = 2
	sidebarWidth = 36
)

// eventLog keeps the last controller notification for the status line.
// The model is copied on every update, so it lives behind a pointer.
type eventLog struct {
	last string
	subs []notify.Handle
}

type Model struct {
	width  int
	height int

	// map area in cells
	mapW int
	mapH int

	name   string
	reg    *shape.Registry
	cv     *canvas.Canvas
	view   *viewer.Viewer
	kinds  []shape.Kind
	events *eventLog

	keys        keyMap
	help        help.Model
	tbl         table.Model
	showObjects bool
	fitted      bool

	hovering bool
	hover    vec.Vec2 // window coordinates
	status   string
	err      error
}

// New shows doc in a fresh canvas.
func New(doc *document.Document, opts viewer.Options) (Model, error) {
	solver, err := doc.Solver()
	if err != nil {
		return Model{}, err
	}
	opts.Solver = solver
	reg := shape.NewRegistry()
	cv := canvas.New()
	if err := document.Restore(doc, reg, cv); err != nil {
		return Model{}, err
	}
	v, err := viewer.New(cv, reg, opts)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		name:   doc.Name,
		reg:    reg,
		cv:     cv,
		view:   v,
		events: &eventLog{},
		keys:   defaultKeys(),
		help:   help.New(),
		kinds:  reg.DrawableKinds(),
		status: "skycanvas ready",
	}

	ctrl := v.Controller()
	log := m.events
	for _, t := range []interact.EventType{interact.EventDraw, interact.EventEdit, interact.EventSelect} {
		log.subs = append(log.subs, ctrl.On(t, func(ev interact.Event) {
			log.last = fmt.Sprintf("%s %v", ev.Type, ev.Tags)
		}))
	}
	log.subs = append(log.subs, cv.On(canvas.EventDeleted, func(ev canvas.Event) {
		log.last = fmt.Sprintf("deleted %v", ev.Tags)
	}))

	m.tbl = table.New(
		table.WithColumns([]table.Column{
			{Title: "Tag", Width: 10},
			{Title: "Kind", Width: 9},
			{Title: "Space", Width: 6},
			{Title: "Sel", Width: 3},
		}),
		table.WithFocused(true),
	)
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

// Close detaches the viewer from the canvas.
func (m Model) Close() {
	for _, h := range m.events.subs {
		h.Remove()
	}
	m.view.Close()
}

// Viewer exposes the viewer for hosts that drive it directly.
func (m Model) Viewer() *viewer.Viewer { return m.view }

// layout recomputes the map area and resizes the viewer to match: one
// window unit per braille dot.
func (m *Model) layout() {
	m.mapW = max(10, m.width)
	if m.showObjects {
		m.mapW = max(10, m.width-sidebarWidth-1)
	}
	foot := footerHeight
	if m.help.ShowAll {
		foot += len(m.keys.FullHelp()[0]) - 1
	}
	m.mapH = max(4, m.height-headerHeight-foot)
	if err := m.view.SetWindowSize(float64(m.mapW*dotsX), float64(m.mapH*dotsY)); err != nil {
		m.err = err
	}
	m.tbl.SetHeight(max(3, m.mapH-3))
	m.help.Width = m.width
}

// windowPoint maps a terminal cell to the window coordinates of its
// centre. It reports false outside the map area.
func (m Model) windowPoint(cx, cy int) (vec.Vec2, bool) {
	cy -= headerHeight
	if cx < 0 || cy < 0 || cx >= m.mapW || cy >= m.mapH {
		return vec.Vec2{}, false
	}
	return vec.Vec2{
		X: float64(cx*dotsX) + dotsX/2,
		Y: float64(cy*dotsY) + dotsY/2,
	}, true
}

func (m *Model) refreshObjects() {
	ctrl := m.view.Controller()
	var rows []table.Row
	for _, tag := range m.cv.Tags() {
		s, err := m.cv.Get(tag)
		if err != nil {
			continue
		}
		sel := ""
		if ctrl.IsSelected(tag) {
			sel = "*"
		}
		rows = append(rows, table.Row{tag, s.Kind().String(), string(s.Base().Space), sel})
	}
	m.tbl.SetRows(rows)
}
