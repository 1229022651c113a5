package canvas

import (
	"log/slog"

	"github.com/inamate/skycanvas/internal/shape"
)

// logger shares the shape package logger so one SetLogger call covers the
// whole scene graph.
func logger() *slog.Logger { return shape.Logger() }
