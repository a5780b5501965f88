package handler

import (
	"net/http"
	"strconv"

	apperr "devicemap/internal/errors"
)

// CreateConnectionTypeRequest is the JSON body for a new connection type
type CreateConnectionTypeRequest struct {
	Name string `json:"name"`
}

// CreateConnectionRequest is the JSON body for a new connection
type CreateConnectionRequest struct {
	SourceID         int64  `json:"source_id"`
	DestinationID    int64  `json:"destination_id"`
	ConnectionTypeID *int64 `json:"connection_type_id"`
}

// ListConnectionTypes returns the connection type catalog
func (h *Handler) ListConnectionTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ConnectionTypes.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, types, http.StatusOK)
}

// CreateConnectionType adds a connection type. Form posts use the field
// type_name.
func (h *Handler) CreateConnectionType(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var name string
	if isJSON(r) {
		var req CreateConnectionTypeRequest
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
		name = req.Name
	} else {
		name = r.FormValue("type_name")
		if name == "" {
			name = r.FormValue("name")
		}
	}

	ct, err := h.svc.ConnectionTypes.Create(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, ct, http.StatusCreated)
}

// ListConnections returns all connections
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.svc.Connections.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, conns, http.StatusOK)
}

// GetConnection returns a single connection
func (h *Handler) GetConnection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := h.svc.Connections.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, conn, http.StatusOK)
}

// CreateConnection links two devices. Form posts use source_id,
// destination_id and connection_type_id.
func (h *Handler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateConnectionRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	} else {
		var err error
		if req.SourceID, err = parseRequiredID("source_id", r.FormValue("source_id")); err != nil {
			h.writeError(w, r, err)
			return
		}
		if req.DestinationID, err = parseRequiredID("destination_id", r.FormValue("destination_id")); err != nil {
			h.writeError(w, r, err)
			return
		}
		if req.ConnectionTypeID, err = parseOptionalID("connection_type_id", r.FormValue("connection_type_id")); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	conn, err := h.svc.Connections.Create(r.Context(), req.SourceID, req.DestinationID, req.ConnectionTypeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/connections/"+strconv.FormatInt(conn.ID, 10))
	h.writeJSON(w, conn, http.StatusCreated)
}

// apiNotFound answers unknown routes with the standard error body
func (h *Handler) apiNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, apperr.NotFound("no route for %s %s", r.Method, r.URL.Path))
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, ErrorResponse{
		Error: "method " + r.Method + " not allowed",
		Code:  apperr.CodeValidation,
	}, http.StatusMethodNotAllowed)
}
