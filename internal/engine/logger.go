package engine

import (
	"log/slog"

	"github.com/inamate/skycanvas/internal/shape"
)

func logger() *slog.Logger { return shape.Logger() }
