package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/maraichr/framelint/internal/engine"
	"github.com/maraichr/framelint/internal/parser"
	"github.com/maraichr/framelint/pkg/apierr"
	"github.com/maraichr/framelint/pkg/diag"
)

type CheckHandler struct {
	logger *slog.Logger
	linter *engine.Linter
}

func NewCheckHandler(logger *slog.Logger, linter *engine.Linter) *CheckHandler {
	return &CheckHandler{logger: logger, linter: linter}
}

type checkFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type checkRequest struct {
	Files  []checkFile `json:"files"`
	Strict bool        `json:"strict,omitempty"`
}

type checkResponse struct {
	RunID       string            `json:"run_id"`
	Success     bool              `json:"success"`
	Errors      int               `json:"errors"`
	Warnings    int               `json:"warnings"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

// Check runs the submitted sources against the project registry plus any
// schemas they declare, returning the same diagnostics the CLI would emit.
func (h *CheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	if len(req.Files) == 0 {
		writeAPIError(w, h.logger, apierr.FilesRequired())
		return
	}

	inputs := make([]parser.FileInput, 0, len(req.Files))
	for _, f := range req.Files {
		if f.Path == "" {
			writeAPIError(w, h.logger, apierr.FilesRequired())
			return
		}
		inputs = append(inputs, parser.FileInput{Path: f.Path, Content: []byte(f.Content)})
	}

	res, err := h.linter.CheckFiles(r.Context(), inputs)
	if err != nil {
		writeAPIError(w, h.logger, apierr.CheckFailed(err))
		return
	}

	errors, warnings := diag.Counts(res.Diagnostics)
	ds := res.Diagnostics
	if ds == nil {
		ds = []diag.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, checkResponse{
		RunID:       res.RunID,
		Success:     engine.OutcomeOf(res, req.Strict) == engine.OutcomeSuccess,
		Errors:      errors,
		Warnings:    warnings,
		Diagnostics: ds,
	})
}
