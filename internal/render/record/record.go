// Package record captures drawing as a flat command list that a browser or
// remote client can replay on a 2D context.
package record

import (
	"encoding/json"
	"slices"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/render"
	"github.com/inamate/skycanvas/internal/shape"
)

// DrawCommand is a single drawing operation. Points are canvas pixels,
// flattened as x0, y0, x1, y1, ...
type DrawCommand struct {
	Op          string    `json:"op"` // "line", "polygon", "path", "circle", "text"
	Points      []float64 `json:"points,omitempty"`
	Radius      float64   `json:"radius,omitempty"`
	Text        string    `json:"text,omitempty"`
	FontSize    float64   `json:"fontSize,omitempty"`
	Rotation    float64   `json:"rotation,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Opacity     float64   `json:"opacity,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	FillOpacity float64   `json:"fillOpacity,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
}

// Recorder is a shape.Renderer that appends a DrawCommand per call.
type Recorder struct {
	Commands []DrawCommand
}

var _ shape.Renderer = (*Recorder)(nil)

// Reset drops the recorded commands, keeping the buffer.
func (r *Recorder) Reset() { r.Commands = r.Commands[:0] }

func flatten(pts []vec.Vec2) []float64 {
	out := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, p.X, p.Y)
	}
	return out
}

func styled(op string, pts []float64, st shape.Style) DrawCommand {
	cmd := DrawCommand{
		Op:          op,
		Points:      pts,
		Stroke:      st.Color,
		StrokeWidth: st.LineWidth,
		Opacity:     st.Alpha,
		Dash:        slices.Clone(st.Dash),
	}
	if st.Fill {
		cmd.Fill = st.FillColor
		if cmd.Fill == "" {
			cmd.Fill = st.Color
		}
		cmd.FillOpacity = st.FillAlpha
	}
	return cmd
}

func (r *Recorder) DrawLine(a, b vec.Vec2, st shape.Style) {
	r.Commands = append(r.Commands, styled("line", []float64{a.X, a.Y, b.X, b.Y}, st))
}

func (r *Recorder) DrawPolygon(pts []vec.Vec2, st shape.Style) {
	r.Commands = append(r.Commands, styled("polygon", flatten(pts), st))
}

func (r *Recorder) DrawPath(pts []vec.Vec2, st shape.Style) {
	st.Fill = false
	r.Commands = append(r.Commands, styled("path", flatten(pts), st))
}

func (r *Recorder) DrawCircle(c vec.Vec2, radius float64, st shape.Style) {
	cmd := styled("circle", []float64{c.X, c.Y}, st)
	cmd.Radius = radius
	r.Commands = append(r.Commands, cmd)
}

func (r *Recorder) DrawText(p vec.Vec2, text string, size, rot float64, st shape.Style) {
	cmd := styled("text", []float64{p.X, p.Y}, st)
	cmd.Text = text
	cmd.FontSize = size
	cmd.Rotation = rot
	r.Commands = append(r.Commands, cmd)
}

// TextExtents uses the shared bitmap metrics, since the replaying client's
// fonts are unknown here.
func (r *Recorder) TextExtents(text string, size float64) (wd, ht float64) {
	return render.TextExtents(text, size)
}

// JSON serializes the recorded commands.
func (r *Recorder) JSON() (string, error) {
	return DrawCommandsToJSON(r.Commands)
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
