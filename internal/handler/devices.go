package handler

import (
	"errors"
	"io"
	"net/http"

	"devicemap/internal/asset"
	apperr "devicemap/internal/errors"
)

// CreateDeviceRequest is the JSON form of a device creation. Images are
// referenced by a previously stored asset name; uploads use multipart.
type CreateDeviceRequest struct {
	Name       string `json:"name"`
	DeviceType string `json:"device_type"`
	ImageRef   string `json:"image_ref"`
}

// ListDevices returns all devices
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.svc.Devices.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, devices, http.StatusOK)
}

// GetDevice returns a single device
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	device, err := h.svc.Devices.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, device, http.StatusOK)
}

// CreateDevice accepts either a JSON body or a multipart form with the
// fields name, device_type and an optional device_image file
func (h *Handler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	if isJSON(r) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req CreateDeviceRequest
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
		device, err := h.svc.Devices.Create(r.Context(), req.Name, req.DeviceType, req.ImageRef)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, device, http.StatusCreated)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, r, apperr.Validation("upload exceeds %d bytes", maxErr.Limit))
			return
		}
		h.writeError(w, r, apperr.Validation("invalid form: %v", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	upload, err := readUpload(r, "device_image")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	device, err := h.svc.Devices.CreateWithImage(r.Context(), r.FormValue("name"), r.FormValue("device_type"), upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, device, http.StatusCreated)
}

// readUpload returns the named file from a parsed multipart form, or nil
// when the field is absent or has no filename
func readUpload(r *http.Request, field string) (*asset.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("read %s: %v", field, err)
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Validation("read %s: %v", field, err)
	}
	return &asset.Upload{Filename: header.Filename, Data: data}, nil
}

// DeleteDevice removes a device and reports what happened to its connections
func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.svc.Devices.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// DeviceConnections lists the connections touching a device
func (h *Handler) DeviceConnections(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conns, err := h.svc.Devices.Connections(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, conns, http.StatusOK)
}
