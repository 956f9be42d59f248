package server

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maraichr/framelint/internal/engine"
	"github.com/maraichr/framelint/internal/export"
	"github.com/maraichr/framelint/pkg/apierr"
)

type SchemaHandler struct {
	logger *slog.Logger
	linter *engine.Linter
}

func NewSchemaHandler(logger *slog.Logger, linter *engine.Linter) *SchemaHandler {
	return &SchemaHandler{logger: logger, linter: linter}
}

type schemaSummary struct {
	Name    string `json:"name"`
	File    string `json:"file,omitempty"`
	Columns int    `json:"columns"`
}

type schemaListResponse struct {
	Schemas []schemaSummary `json:"schemas"`
}

func (h *SchemaHandler) List(w http.ResponseWriter, r *http.Request) {
	resp := schemaListResponse{Schemas: []schemaSummary{}}
	for _, name := range h.linter.SchemaNames() {
		def, ok := h.linter.Schema(name)
		if !ok {
			continue
		}
		resp.Schemas = append(resp.Schemas, schemaSummary{
			Name:    def.Name,
			File:    def.File,
			Columns: len(def.Columns),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, ok := h.linter.Schema(name)
	if !ok {
		writeAPIError(w, h.logger, apierr.SchemaNotFound(name))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// Export serves the pandera-format document for one schema. ?format=yaml
// switches from the JSON default.
func (h *SchemaHandler) Export(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, ok := h.linter.Schema(name)
	if !ok {
		writeAPIError(w, h.logger, apierr.SchemaNotFound(name))
		return
	}
	doc := export.Pandera(def)
	if r.URL.Query().Get("format") == "yaml" {
		var buf bytes.Buffer
		if err := doc.WriteYAML(&buf); err != nil {
			writeAPIError(w, h.logger, apierr.ExportFailed(err))
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
