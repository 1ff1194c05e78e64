package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"topodiagram/internal/codec"
	"topodiagram/internal/domain"
	"topodiagram/internal/export"
	"topodiagram/internal/logging"
	"topodiagram/internal/render"
	"topodiagram/internal/repository"
	"topodiagram/internal/template"
	"topodiagram/internal/viewer"
)

var (
	// ErrNoStore is returned by session operations when no store is configured
	ErrNoStore = errors.New("session store not configured")
	// ErrBadRequest is returned for input the service rejects outright
	ErrBadRequest = errors.New("bad request")
)

// DiagramService provides serialized access to the active diagram
type DiagramService struct {
	mu       sync.Mutex
	catalog  *template.Catalog
	viewer   *viewer.Viewer
	exporter *export.Exporter
	store    repository.SessionStore
	eventBus *EventBus
	log      *logrus.Entry

	newSessionID func() string
	sessionID    string
	sessionName  string
}

// Option configures a DiagramService
type Option func(*options)

type options struct {
	store       repository.SessionStore
	editable    bool
	rasterScale float64
	newID       func() string
}

// WithStore enables session persistence
func WithStore(store repository.SessionStore) Option {
	return func(o *options) { o.store = store }
}

// WithEditable shows the edit and delete affordances
func WithEditable(editable bool) Option {
	return func(o *options) { o.editable = editable }
}

// WithRasterScale sets the device scale of PNG and PDF exports
func WithRasterScale(scale float64) Option {
	return func(o *options) { o.rasterScale = scale }
}

// WithIDGenerator replaces the uuid-based ID source for new devices and sessions
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// NewDiagramService creates a service with nothing loaded
func NewDiagramService(catalog *template.Catalog, eventBus *EventBus, opts ...Option) *DiagramService {
	o := options{editable: true, rasterScale: export.DefaultRasterScale, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	if eventBus == nil {
		eventBus = NewEventBus()
	}

	s := &DiagramService{
		catalog:  catalog,
		store:    o.store,
		eventBus: eventBus,
		log:      logging.WithComponent("service"),
		viewer: viewer.New(
			viewer.WithEditable(o.editable),
			viewer.WithIDGenerator(o.newID),
		),
	}
	s.newSessionID = o.newID
	s.exporter = export.New(lockedSurface{s}, export.WithRasterScale(o.rasterScale))

	s.viewer.Subscribe(func(f viewer.Frame) {
		s.eventBus.Publish(Event{
			Type:    EventFrameRendered,
			Payload: FrameSummary{Seq: f.Seq, State: f.State, Devices: len(f.Scene.Nodes), Paths: len(f.Scene.Paths)},
		})
	})
	s.viewer.OnEdit(func(d domain.Device) {
		s.eventBus.Publish(Event{Type: EventDeviceEditRequested, Payload: d})
	})
	return s
}

// FrameSummary is the payload of frame_rendered events
type FrameSummary struct {
	Seq     uint64           `json:"seq"`
	State   viewer.ViewState `json:"state"`
	Devices int              `json:"devices"`
	Paths   int              `json:"paths"`
}

// Status describes the active diagram
type Status struct {
	Mounted     bool                  `json:"mounted"`
	Editable    bool                  `json:"editable"`
	Kind        domain.TopologyKind   `json:"kind,omitempty"`
	Title       string                `json:"title,omitempty"`
	Config      domain.TopologyConfig `json:"config"`
	State       viewer.ViewState      `json:"state"`
	Devices     int                   `json:"devices"`
	Connections int                   `json:"connections"`
	SessionID   string                `json:"sessionId,omitempty"`
}

// EventBus returns the bus the service publishes on
func (s *DiagramService) EventBus() *EventBus {
	return s.eventBus
}

// HasStore reports whether session persistence is enabled
func (s *DiagramService) HasStore() bool {
	return s.store != nil
}

// Templates returns every template in the catalog
func (s *DiagramService) Templates() []domain.Template {
	return s.catalog.Templates()
}

// LoadConfig instantiates the template for cfg and mounts it, replacing any
// previous diagram and resetting the view
func (s *DiagramService) LoadConfig(cfg domain.TopologyConfig) (Status, error) {
	inst, err := s.catalog.Build(cfg)
	if err != nil {
		return Status{}, err
	}

	s.mu.Lock()
	s.viewer.Load(inst)
	s.sessionID, s.sessionName = "", ""
	status := s.statusLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"kind":        cfg.Kind,
		"customer":    cfg.CustomerName,
		"devices":     status.Devices,
		"connections": status.Connections,
	}).Info("Diagram loaded")
	s.eventBus.Publish(Event{Type: EventDiagramLoaded, Payload: status})
	return status, nil
}

// Unload unmounts the active diagram
func (s *DiagramService) Unload() {
	s.mu.Lock()
	s.viewer.Unload()
	s.sessionID, s.sessionName = "", ""
	s.mu.Unlock()
	s.eventBus.Publish(Event{Type: EventDiagramUnloaded})
}

// Status returns a description of the active diagram
func (s *DiagramService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *DiagramService) statusLocked() Status {
	st := Status{
		Mounted:   s.viewer.Mounted(),
		Editable:  s.viewer.Editable(),
		State:     s.viewer.State(),
		SessionID: s.sessionID,
	}
	if !st.Mounted {
		return st
	}
	g := s.viewer.Graph()
	tmpl := s.viewer.Template()
	st.Kind = tmpl.Kind
	st.Title = tmpl.Title
	st.Config = s.viewer.Config()
	st.Devices = len(g.Devices)
	st.Connections = len(g.Connections)
	return st
}

// SetEditable toggles the edit and delete affordances
func (s *DiagramService) SetEditable(editable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer.SetEditable(editable)
}

// Dispatch feeds one input event to the viewer
func (s *DiagramService) Dispatch(ev viewer.Event) viewer.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer.Dispatch(ev)
}

// ResetView restores scale 1 and zero pan
func (s *DiagramService) ResetView() error {
	s.mu.Lock()
	if !s.viewer.Mounted() {
		s.mu.Unlock()
		return viewer.ErrNoDiagram
	}
	s.viewer.ResetView()
	state := s.viewer.State()
	s.mu.Unlock()

	s.eventBus.Publish(Event{Type: EventViewReset, Payload: state})
	return nil
}

// AddDevice inserts a device at the quick-add position
func (s *DiagramService) AddDevice(t domain.DeviceType, label string) (domain.Device, error) {
	if strings.TrimSpace(string(t)) == "" {
		return domain.Device{}, fmt.Errorf("%w: device type is required", ErrBadRequest)
	}

	s.mu.Lock()
	d, err := s.viewer.AddDevice(t, label)
	s.mu.Unlock()
	if err != nil {
		return domain.Device{}, err
	}

	if !t.Known() {
		s.log.WithField("type", t).Warn("Added device of unknown type")
	}
	s.eventBus.Publish(Event{Type: EventDeviceAdded, Payload: d})
	return d, nil
}

// RenameDevice changes a device label
func (s *DiagramService) RenameDevice(id, label string) error {
	s.mu.Lock()
	err := s.viewer.RenameDevice(id, label)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventDeviceRenamed,
		Payload: map[string]string{"device_id": id, "label": label},
	})
	return nil
}

// RemoveDevice deletes a device; its connections become dangling
func (s *DiagramService) RemoveDevice(id string) error {
	s.mu.Lock()
	err := s.viewer.RemoveDevice(id)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventDeviceRemoved,
		Payload: map[string]string{"device_id": id},
	})
	return nil
}

// Graph returns a copy of the live devices and connections
func (s *DiagramService) Graph() (*domain.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.viewer.Mounted() {
		return nil, viewer.ErrNoDiagram
	}
	return s.viewer.Graph(), nil
}

// EncodeGraph writes the live graph with the codec for format
func (s *DiagramService) EncodeGraph(format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	g, err := s.Graph()
	if err != nil {
		return err
	}
	return c.Export(g, w)
}

// Frame returns the current frame
func (s *DiagramService) Frame() viewer.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer.Frame()
}

// SVG renders the current frame as bare surface markup
func (s *DiagramService) SVG() ([]byte, error) {
	s.mu.Lock()
	if !s.viewer.Mounted() {
		s.mu.Unlock()
		return nil, viewer.ErrNoDiagram
	}
	scene := s.viewer.Scene()
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := render.EncodeSVG(&buf, scene); err != nil {
		return nil, fmt.Errorf("failed to render svg: %w", err)
	}
	return buf.Bytes(), nil
}

// Export packages the current frame. It returns (nil, nil) when nothing
// is mounted.
func (s *DiagramService) Export(ctx context.Context, format export.Format) (*export.Artifact, error) {
	artifact, err := s.exporter.Export(ctx, format)
	if err != nil {
		if !errors.Is(err, export.ErrBusy) && !errors.Is(err, export.ErrUnknownFormat) {
			s.log.WithError(err).WithField("format", format).Error("Export failed")
		}
		return nil, err
	}
	if artifact == nil {
		s.log.WithField("format", format).Debug("Export skipped, no diagram mounted")
		return nil, nil
	}

	s.log.WithFields(logrus.Fields{
		"format":   artifact.Format,
		"filename": artifact.Filename,
		"bytes":    len(artifact.Data),
	}).Info("Export completed")
	s.eventBus.Publish(Event{
		Type: EventExportCompleted,
		Payload: map[string]interface{}{
			"format":   artifact.Format,
			"filename": artifact.Filename,
			"bytes":    len(artifact.Data),
		},
	})
	return artifact, nil
}

// ExportTo exports and hands the artifact to sink. A nil artifact is not
// delivered.
func (s *DiagramService) ExportTo(ctx context.Context, format export.Format, sink export.Sink) (*export.Artifact, error) {
	artifact, err := s.Export(ctx, format)
	if err != nil || artifact == nil {
		return artifact, err
	}
	if err := sink.Deliver(ctx, artifact); err != nil {
		return nil, fmt.Errorf("failed to deliver %s: %w", artifact.Filename, err)
	}
	return artifact, nil
}

// lockedSurface gives the exporter a view of the viewer that takes the
// service lock once per snapshot, so rasterizing runs unlocked
type lockedSurface struct {
	s *DiagramService
}

func (l lockedSurface) Snapshot() (render.Container, bool) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if !l.s.viewer.Mounted() {
		return render.Container{}, false
	}
	return render.Container{Chrome: l.s.viewer.Chrome(), Scene: l.s.viewer.Scene()}, true
}
