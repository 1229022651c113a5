package interact

import (
	"errors"
	"fmt"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/shape"
)

// HandleRadius is the drawn size of an edit handle in canvas pixels.
const HandleRadius = 4.0

var handleStyle = shape.Style{Color: "#00ffff", LineWidth: 1, Alpha: 1}

// DrawOverlay draws what the controller adds on top of the canvas: the
// shape being drawn, and in edit mode the handles of selected objects.
func (c *Controller) DrawOverlay(r shape.Renderer) error {
	var v coord.Viewer
	if h := c.canvas.Viewer(); h != nil {
		v = h
	}
	var errs []error
	if c.draw != nil && c.draw.Shape != nil {
		if err := c.draw.Shape.Draw(r, v); err != nil {
			errs = append(errs, fmt.Errorf("draw prospective %s: %w", c.draw.Kind, err))
		}
	}
	if c.mode != ModeEdit {
		return errors.Join(errs...)
	}
	for _, tag := range c.sel.tags {
		s, err := c.canvas.Get(tag)
		if err != nil {
			continue
		}
		eps, err := s.EditPoints()
		if err != nil {
			errs = append(errs, fmt.Errorf("handles of %s: %w", tag, err))
			continue
		}
		for _, ep := range eps {
			p := ep.Pos
			if v != nil {
				p = v.DataToCanvas(p)
			}
			st := handleStyle
			if ep.Role == shape.HandleMove {
				st.Fill, st.FillColor, st.FillAlpha = true, st.Color, 1
			}
			r.DrawCircle(p, HandleRadius, st)
		}
	}
	return errors.Join(errs...)
}
