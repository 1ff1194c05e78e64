package viewer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"topodiagram/internal/domain"
	"topodiagram/internal/layout"
	"topodiagram/internal/render"
	"topodiagram/internal/template"
)

var (
	// ErrNoDiagram is returned by edits made before any diagram is loaded
	ErrNoDiagram = errors.New("no diagram loaded")
	// ErrDeviceNotFound is returned when an edit names an unknown device
	ErrDeviceNotFound = errors.New("device not found")
)

// Frame is one rendered state of the surface
type Frame struct {
	Seq   uint64       `json:"seq"`
	Scene render.Scene `json:"-"`
	State ViewState    `json:"state"`
}

// Viewer owns the single active diagram: its device positions, its view
// state and the listeners redrawn after every change. It is not safe for
// concurrent use.
type Viewer struct {
	editable bool
	newID    func() string

	loaded      bool
	tmpl        domain.Template
	config      domain.TopologyConfig
	devices     []domain.Device
	connections []domain.Connection
	state       ViewState
	quickAdded  int
	seq         uint64

	listeners []func(Frame)
	onEdit    func(domain.Device)
}

// Option configures a Viewer
type Option func(*Viewer)

// WithEditable shows the edit and delete affordances on every device
func WithEditable(editable bool) Option {
	return func(v *Viewer) { v.editable = editable }
}

// WithIDGenerator replaces the uuid-based ID source used by AddDevice
func WithIDGenerator(fn func() string) Option {
	return func(v *Viewer) { v.newID = fn }
}

// New creates a viewer with nothing mounted
func New(opts ...Option) *Viewer {
	v := &Viewer{
		newID: func() string { return uuid.NewString() },
		state: InitialState(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load mounts a freshly instantiated diagram and resets the view
func (v *Viewer) Load(inst *template.Instance) {
	v.loaded = true
	v.tmpl = inst.Template
	v.config = inst.Config
	g := inst.Graph.Clone()
	v.devices = g.Devices
	v.connections = g.Connections
	v.state = InitialState()
	v.quickAdded = 0
	v.notify()
}

// Unload unmounts the diagram
func (v *Viewer) Unload() {
	v.loaded = false
	v.devices = nil
	v.connections = nil
	v.state = InitialState()
	v.notify()
}

// Mounted reports whether a diagram is loaded
func (v *Viewer) Mounted() bool {
	return v.loaded
}

// Editable reports whether affordances are shown
func (v *Viewer) Editable() bool {
	return v.editable
}

// SetEditable toggles the edit and delete affordances
func (v *Viewer) SetEditable(editable bool) {
	if v.editable == editable {
		return
	}
	v.editable = editable
	v.notify()
}

// Dispatch feeds one input event through the state machine. Pointer-down
// events without a target are hit-tested against the current frame.
func (v *Viewer) Dispatch(ev Event) Effect {
	if !v.loaded {
		return Effect{}
	}
	if ev.Type == EventPointerDown && ev.Target.Kind == TargetAuto {
		ev.Target = HitTest(v.devices, v.state, ev.Screen, v.editable)
	}
	if !v.editable && (ev.Target.Kind == TargetEdit || ev.Target.Kind == TargetDelete) {
		ev.Target = Target{Kind: TargetDevice, DeviceID: ev.Target.DeviceID}
	}

	var edited *domain.Device
	if ev.Target.Kind == TargetEdit {
		if i := findDevice(v.devices, ev.Target.DeviceID); i >= 0 {
			d := v.devices[i].Clone()
			edited = &d
		}
	}

	state, devices, effect := Update(v.state, v.devices, ev)
	v.state = state
	v.devices = devices

	if effect.Action == ActionEdit && edited != nil && v.onEdit != nil {
		v.onEdit(*edited)
	}
	if effect.Changed {
		v.notify()
	}
	return effect
}

// ResetView restores scale 1 and zero pan without moving any device
func (v *Viewer) ResetView() {
	v.state.Scale = 1
	v.state.Pan = domain.Point{}
	v.notify()
}

// AddDevice inserts a device outside the template flow at the quick-add spot
func (v *Viewer) AddDevice(t domain.DeviceType, label string) (domain.Device, error) {
	if !v.loaded {
		return domain.Device{}, ErrNoDiagram
	}
	if strings.TrimSpace(label) == "" {
		label = string(t)
	}

	d := domain.NewDevice(fmt.Sprintf("%s-%s", t, v.newID()), t, label)
	d.Position = layout.QuickAddPosition(v.quickAdded)
	v.quickAdded++

	v.devices = append(v.devices, *d)
	v.notify()
	return d.Clone(), nil
}

// RenameDevice changes a device's label
func (v *Viewer) RenameDevice(id, label string) error {
	i, err := v.lookup(id)
	if err != nil {
		return err
	}
	v.devices[i].Label = label
	v.notify()
	return nil
}

// RemoveDevice deletes a device. Its connections are kept and become
// dangling, so they stop being drawn.
func (v *Viewer) RemoveDevice(id string) error {
	i, err := v.lookup(id)
	if err != nil {
		return err
	}
	v.devices = append(v.devices[:i:i], v.devices[i+1:]...)
	v.notify()
	return nil
}

// ApplyPositions moves the named devices. Unknown IDs are ignored. It
// returns the number of devices moved.
func (v *Viewer) ApplyPositions(positions map[string]domain.Point) int {
	moved := 0
	for i := range v.devices {
		if p, ok := positions[v.devices[i].ID]; ok {
			v.devices[i].Position = p
			moved++
		}
	}
	if moved > 0 {
		v.notify()
	}
	return moved
}

// Positions returns the current position of every device
func (v *Viewer) Positions() map[string]domain.Point {
	out := make(map[string]domain.Point, len(v.devices))
	for _, d := range v.devices {
		out[d.ID] = d.Position
	}
	return out
}

// Graph returns a copy of the live devices and connections
func (v *Viewer) Graph() *domain.Graph {
	g := &domain.Graph{Devices: v.devices, Connections: v.connections}
	return g.Clone()
}

// State returns the current view state
func (v *Viewer) State() ViewState {
	return v.state
}

// Template returns the template of the loaded diagram
func (v *Viewer) Template() domain.Template {
	return v.tmpl
}

// Config returns the survey configuration of the loaded diagram
func (v *Viewer) Config() domain.TopologyConfig {
	return v.config
}

// Scene renders the current frame of the surface
func (v *Viewer) Scene() render.Scene {
	return render.Render(v.devices, v.connections, v.state.View(), render.Options{
		Width:    v.tmpl.Layout.Width,
		Height:   v.tmpl.Layout.Height,
		Editable: v.editable,
	})
}

// Chrome returns the header shown around the surface in exports
func (v *Viewer) Chrome() render.Chrome {
	return render.Chrome{
		Title:    v.tmpl.Title,
		Customer: v.config.CustomerName,
		Address:  v.config.Address,
	}
}

// Frame returns the current frame without notifying listeners
func (v *Viewer) Frame() Frame {
	return Frame{Seq: v.seq, Scene: v.Scene(), State: v.state}
}

// Subscribe registers fn to receive every new frame
func (v *Viewer) Subscribe(fn func(Frame)) {
	v.listeners = append(v.listeners, fn)
}

// OnEdit registers the handler for the edit affordance
func (v *Viewer) OnEdit(fn func(domain.Device)) {
	v.onEdit = fn
}

func (v *Viewer) lookup(id string) (int, error) {
	if !v.loaded {
		return -1, ErrNoDiagram
	}
	i := findDevice(v.devices, id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return i, nil
}

func (v *Viewer) notify() {
	v.seq++
	if len(v.listeners) == 0 {
		return
	}
	frame := v.Frame()
	for _, fn := range v.listeners {
		fn(frame)
	}
}
