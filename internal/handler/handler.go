package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperr "devicemap/internal/errors"
	"devicemap/internal/service"
)

// Handler serves the inventory API
type Handler struct {
	svc            *service.Services
	maxUploadBytes int64
	logger         *zap.Logger
}

// New creates a handler over the given services
func New(svc *service.Services, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 16 << 20
	}
	return &Handler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("http"),
	}
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  apperr.Code `json:"code"`
}

// statusFor maps an error code to an HTTP status
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

// writeError maps coded errors to statuses. Uncoded errors are logged and
// reported without internals.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.CodeInternal
	}
	status := statusFor(code)

	msg := apperr.UserMessage(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		if code == apperr.CodeInternal {
			msg = "internal error"
		}
	}

	h.writeJSON(w, ErrorResponse{Error: msg, Code: code}, status)
}

// pathID parses the {id} URL parameter
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id %q", raw)
	}
	return id, nil
}

// parseOptionalID parses a form or JSON id where "" means absent
func parseOptionalID(field, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.Validation("%s must be an integer", field)
	}
	return &id, nil
}

func parseRequiredID(field, raw string) (int64, error) {
	id, err := parseOptionalID(field, raw)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, apperr.Validation("%s required", field)
	}
	return *id, nil
}

// isJSON reports whether the request body is JSON
func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// decodeJSON decodes a JSON body, rejecting unknown fields
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("request body exceeds %d bytes", maxErr.Limit)
		}
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
