package main

import (
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/inamate/skycanvas/internal/config"
	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/tui"
)

// skytui [document.json]
//
// Without an argument the sample field is shown. Logs go to the file
// named by SKYTUI_LOG, since the terminal belongs to the program.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var logOut io.Writer = io.Discard
	if path := os.Getenv("SKYTUI_LOG"); path != "" {
		f, err := tea.LogToFile(path, "skytui")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()})))
	shape.SetLogger(slog.Default())

	opts, err := cfg.Viewer()
	if err != nil {
		log.Fatal(err)
	}

	doc := document.NewSampleDocument("local")
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
		if doc, err = document.Parse(data); err != nil {
			log.Fatal(err)
		}
	}

	m, err := tui.New(doc, opts)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Fatal(err)
	}
}
