package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"topodiagram/internal/codec"
	"topodiagram/internal/domain"
	"topodiagram/internal/export"
	"topodiagram/internal/logging"
	"topodiagram/internal/repository"
	"topodiagram/internal/service"
	"topodiagram/internal/template"
	"topodiagram/internal/viewer"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// DiagramHandler handles diagram API requests
type DiagramHandler struct {
	svc *service.DiagramService
	log *logrus.Entry
}

// NewDiagramHandler creates a new diagram handler
func NewDiagramHandler(svc *service.DiagramService) *DiagramHandler {
	return &DiagramHandler{svc: svc, log: logging.WithComponent("handler")}
}

// Routes registers every endpoint on mux. events, when set, serves the
// SSE stream.
func (h *DiagramHandler) Routes(mux *http.ServeMux, events http.Handler) {
	mux.HandleFunc("GET /api/templates", h.ListTemplates)

	// Diagram
	mux.HandleFunc("GET /api/diagram", h.GetDiagram)
	mux.HandleFunc("POST /api/diagram", h.LoadDiagram)
	mux.HandleFunc("DELETE /api/diagram", h.UnloadDiagram)
	mux.HandleFunc("POST /api/diagram/events", h.DispatchEvent)
	mux.HandleFunc("POST /api/diagram/reset-view", h.ResetView)
	mux.HandleFunc("PUT /api/diagram/editable", h.SetEditable)
	mux.HandleFunc("GET /api/diagram/render.svg", h.RenderSVG)
	mux.HandleFunc("GET /api/diagram/graph.json", h.ExportGraph)
	mux.HandleFunc("GET /api/diagram/graph.yaml", h.ExportGraph)

	// Devices
	mux.HandleFunc("POST /api/diagram/devices", h.AddDevice)
	mux.HandleFunc("PUT /api/diagram/devices/{id}", h.RenameDevice)
	mux.HandleFunc("DELETE /api/diagram/devices/{id}", h.RemoveDevice)

	// Export
	mux.HandleFunc("GET /api/export/{format}", h.Export)

	// Sessions
	mux.HandleFunc("GET /api/sessions", h.ListSessions)
	mux.HandleFunc("POST /api/sessions", h.SaveSession)
	mux.HandleFunc("POST /api/sessions/{id}/open", h.OpenSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.DeleteSession)

	if events != nil {
		mux.Handle("GET /events", events)
	}
}

// ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TemplateSummary is the listing form of a template
type TemplateSummary struct {
	Kind         domain.TopologyKind   `json:"kind"`
	Title        string                `json:"title"`
	Algorithm    string                `json:"algorithm"`
	Width        float64               `json:"width"`
	Height       float64               `json:"height"`
	QuantityKeys []string              `json:"quantityKeys"`
	DefaultKind  domain.ConnectionKind `json:"defaultConnectionKind"`
}

// ListTemplates returns the template catalog
func (h *DiagramHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := h.svc.Templates()
	out := make([]TemplateSummary, 0, len(templates))
	for _, t := range templates {
		out = append(out, TemplateSummary{
			Kind:         t.Kind,
			Title:        t.Title,
			Algorithm:    t.Layout.Algorithm,
			Width:        t.Layout.Width,
			Height:       t.Layout.Height,
			QuantityKeys: t.QuantityKeys(),
			DefaultKind:  t.DefaultKind,
		})
	}
	h.writeJSON(w, out, http.StatusOK)
}

// GetDiagram returns the status of the active diagram
func (h *DiagramHandler) GetDiagram(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Status(), http.StatusOK)
}

// LoadDiagram instantiates a survey configuration. The body is JSON unless
// the content type names YAML.
func (h *DiagramHandler) LoadDiagram(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(bodyFormat(r))
	if err != nil {
		h.writeError(w, "Unsupported content type", err.Error(), http.StatusUnsupportedMediaType)
		return
	}

	cfg, err := c.Parse(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, "Invalid survey configuration", err.Error(), http.StatusBadRequest)
		return
	}

	status, err := h.svc.LoadConfig(*cfg)
	if err != nil {
		h.fail(w, "Failed to load diagram", err)
		return
	}
	h.writeJSON(w, status, http.StatusOK)
}

// UnloadDiagram unmounts the active diagram
func (h *DiagramHandler) UnloadDiagram(w http.ResponseWriter, r *http.Request) {
	h.svc.Unload()
	w.WriteHeader(http.StatusNoContent)
}

// EventResponse is returned after dispatching an input event
type EventResponse struct {
	Effect viewer.Effect    `json:"effect"`
	State  viewer.ViewState `json:"state"`
}

// DispatchEvent feeds one pointer or wheel event to the viewer
func (h *DiagramHandler) DispatchEvent(w http.ResponseWriter, r *http.Request) {
	var ev viewer.Event
	if !h.decode(w, r, &ev) {
		return
	}

	switch ev.Type {
	case viewer.EventWheel, viewer.EventPointerDown, viewer.EventPointerMove,
		viewer.EventPointerUp, viewer.EventPointerLeave:
	default:
		h.writeError(w, "Invalid event", fmt.Sprintf("unknown event type %q", ev.Type), http.StatusBadRequest)
		return
	}

	if !h.svc.Status().Mounted {
		h.fail(w, "No diagram loaded", viewer.ErrNoDiagram)
		return
	}

	effect := h.svc.Dispatch(ev)
	h.writeJSON(w, EventResponse{Effect: effect, State: h.svc.Status().State}, http.StatusOK)
}

// ResetView restores scale 1 and zero pan
func (h *DiagramHandler) ResetView(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetView(); err != nil {
		h.fail(w, "Failed to reset view", err)
		return
	}
	h.writeJSON(w, h.svc.Status().State, http.StatusOK)
}

// SetEditable toggles the edit and delete affordances
func (h *DiagramHandler) SetEditable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Editable bool `json:"editable"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.svc.SetEditable(req.Editable)
	h.writeJSON(w, h.svc.Status(), http.StatusOK)
}

// RenderSVG returns the current frame as SVG markup
func (h *DiagramHandler) RenderSVG(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.SVG()
	if err != nil {
		h.fail(w, "Failed to render diagram", err)
		return
	}

	w.Header().Set("Content-Type", export.FormatSVG.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// ExportGraph returns the live devices and connections as JSON or YAML
func (h *DiagramHandler) ExportGraph(w http.ResponseWriter, r *http.Request) {
	format := strings.TrimPrefix(path.Ext(r.URL.Path), ".")
	c, err := codec.ForFormat(format)
	if err != nil {
		h.fail(w, "Unsupported graph format", err)
		return
	}

	g, err := h.svc.Graph()
	if err != nil {
		h.fail(w, "Failed to export graph", err)
		return
	}

	if c.Format() == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "application/x-yaml")
	}
	w.Header().Set("Content-Disposition", "attachment; filename=graph."+format)

	if err := c.Export(g, w); err != nil {
		// Can't write error response as we already set headers
		h.log.WithError(err).Error("Failed to encode graph")
	}
}

// Export packages the current frame as svg, png or pdf. Nothing mounted
// answers 204.
func (h *DiagramHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		h.fail(w, "Unsupported export format", err)
		return
	}

	artifact, err := h.svc.Export(r.Context(), format)
	if err != nil {
		h.fail(w, "Failed to export diagram", err)
		return
	}
	if artifact == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.Write(artifact.Data)
}

// DeviceRequest is the body of device create and rename requests
type DeviceRequest struct {
	Type  domain.DeviceType `json:"type"`
	Label string            `json:"label"`
}

// AddDevice inserts a device at the quick-add position
func (h *DiagramHandler) AddDevice(w http.ResponseWriter, r *http.Request) {
	var req DeviceRequest
	if !h.decode(w, r, &req) {
		return
	}

	d, err := h.svc.AddDevice(req.Type, req.Label)
	if err != nil {
		h.fail(w, "Failed to add device", err)
		return
	}
	h.writeJSON(w, d, http.StatusCreated)
}

// RenameDevice changes a device label
func (h *DiagramHandler) RenameDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req DeviceRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.RenameDevice(id, req.Label); err != nil {
		h.fail(w, "Failed to rename device", err)
		return
	}

	g, err := h.svc.Graph()
	if err != nil {
		h.fail(w, "Failed to fetch device", err)
		return
	}
	h.writeJSON(w, g.Device(id), http.StatusOK)
}

// RemoveDevice deletes a device
func (h *DiagramHandler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveDevice(r.PathValue("id")); err != nil {
		h.fail(w, "Failed to remove device", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions returns saved sessions
func (h *DiagramHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListSessions(r.Context())
	if err != nil {
		h.fail(w, "Failed to list sessions", err)
		return
	}
	h.writeJSON(w, sessions, http.StatusOK)
}

// SaveSessionRequest is the body of session save requests
type SaveSessionRequest struct {
	Name  string `json:"name"`
	AsNew bool   `json:"asNew"`
}

// SaveSession stores the active survey and device positions
func (h *DiagramHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req SaveSessionRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	session, err := h.svc.SaveSession(r.Context(), req.Name, req.AsNew)
	if err != nil {
		h.fail(w, "Failed to save session", err)
		return
	}
	h.writeJSON(w, session, http.StatusCreated)
}

// OpenSession mounts a saved session
func (h *DiagramHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.OpenSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to open session", err)
		return
	}
	h.writeJSON(w, status, http.StatusOK)
}

// DeleteSession removes a saved session
func (h *DiagramHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, template.ErrUnknownKind),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, codec.ErrUnsupportedFormat),
		errors.Is(err, service.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, viewer.ErrDeviceNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, viewer.ErrNoDiagram),
		errors.Is(err, export.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *DiagramHandler) fail(w http.ResponseWriter, msg string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.WithError(err).Error(msg)
	}
	h.writeError(w, msg, err.Error(), code)
}

// decode reads a JSON body into v, answering 400 on failure
func (h *DiagramHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// bodyFormat picks the codec for a request body from its content type
func bodyFormat(r *http.Request) string {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "json"
	}
	switch mediaType {
	case "application/x-yaml", "application/yaml", "text/yaml", "text/x-yaml":
		return "yaml"
	case "application/json", "":
		return "json"
	}
	return mediaType
}

func (h *DiagramHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.WithError(err).Warn("Failed to encode JSON")
	}
}

func (h *DiagramHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.log.WithError(err).Warn("Failed to encode error response")
	}
}
