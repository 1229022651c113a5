package canvasapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/export"
	"github.com/inamate/skycanvas/internal/shape"
)

type Handler struct {
	service  *Service
	registry *shape.Registry
}

func NewHandler(service *Service, reg *shape.Registry) *Handler {
	return &Handler{service: service, registry: reg}
}

// Routes registers the canvas endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/canvases", h.Create).Methods("POST")
	r.HandleFunc("/canvases/{canvasId}", h.Get).Methods("GET")
	r.HandleFunc("/canvases/{canvasId}/snapshots", h.CreateSnapshot).Methods("POST")
	r.HandleFunc("/canvases/{canvasId}/render.png", h.RenderPNG).Methods("GET")
	r.HandleFunc("/canvases/{canvasId}/mask.png", h.RenderMask).Methods("GET")
	r.HandleFunc("/canvases/{canvasId}/import", h.Import).Methods("POST")
}

type createRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	if req.Name == "" && !req.Sample {
		req.Name = "Untitled"
	}

	doc, err := h.service.Create(r.Context(), req.Name, req.Sample)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]

	doc, err := h.service.Document(r.Context(), canvasID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]

	snap, err := h.service.SaveSnapshot(r.Context(), canvasID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snap)
}

// RenderPNG rasterises the canvas. Query parameters width and height
// override the document's window size; fit=1 zooms to the objects.
func (h *Handler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	h.renderImage(w, r, export.PNG)
}

// RenderMask rasterises the objects' exact coverage as a black and white
// image over the same view as RenderPNG. Repeated tag parameters restrict
// the mask to those objects.
func (h *Handler) RenderMask(w http.ResponseWriter, r *http.Request) {
	h.renderImage(w, r, export.MaskPNG)
}

type encodeFunc func(io.Writer, *document.Document, *shape.Registry, export.Options) error

func (h *Handler) renderImage(w http.ResponseWriter, r *http.Request, encode encodeFunc) {
	canvasID := mux.Vars(r)["canvasId"]
	q := r.URL.Query()

	var opts export.Options
	for _, p := range []struct {
		name string
		dst  *int
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid %s", p.name)})
			return
		}
		*p.dst = n
	}
	opts.Fit = q.Get("fit") == "1"
	opts.Tags = q["tag"]

	doc, err := h.service.Document(r.Context(), canvasID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// Render fully before writing so a failure can still change the status.
	var buf bytes.Buffer
	if err := encode(&buf, doc, h.registry, opts); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, export.Filename(doc.Name)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrNoStorage):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "persistence disabled"})
	case errors.Is(err, canvas.ErrTagNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, export.ErrBadSize), errors.Is(err, document.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
