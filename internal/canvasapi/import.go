package canvasapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/skycanvas/internal/document"
)

const maxImportSize = 10 << 20 // 10MB

// Import handles POST /canvases/{canvasId}/import (multipart form with a
// "file" field holding a JSON document).
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file too large (max 10MB)"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "only JSON documents are supported"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read file"})
		return
	}
	doc, err := document.Parse(data)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(header.Filename, ".json")
	}

	res, err := h.service.Import(r.Context(), canvasID, doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
