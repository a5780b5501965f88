package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"devicemap/internal/codec"
	apperr "devicemap/internal/errors"
	"devicemap/internal/loader"
)

// GetData returns the vis-network graph payload
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	graph, err := h.svc.Graph.Export(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, graph, http.StatusOK)
}

// Export downloads an inventory snapshot in the format named by {format}
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	exporter, err := codec.ForFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.writeError(w, r, apperr.NotFound("%v", err))
		return
	}

	inv, err := h.svc.Graph.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("devicemap-%s.%s", inv.TakenAt.Format("20060102-150405"), exporter.Format())
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Last-Modified", inv.TakenAt.UTC().Format(http.TimeFormat))

	if err := exporter.Export(inv, w); err != nil {
		// Headers are already sent
		h.logger.Error("failed to write export", zap.String("format", exporter.Format()), zap.Error(err))
	}
}

// ImportYAML applies a YAML seed document from the request body
func (h *Handler) ImportYAML(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	seed, err := loader.Parse(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := loader.Apply(r.Context(), h.svc, seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}
