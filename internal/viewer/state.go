// Package viewer implements the pan, zoom and drag state machine of the
// interactive diagram surface.
package viewer

import (
	"fmt"
	"math"

	"topodiagram/internal/domain"
	"topodiagram/internal/geom"
	"topodiagram/internal/render"
)

// Zoom limits and per-notch wheel factors
const (
	MinScale = 0.5
	MaxScale = 3.0
	ZoomIn   = 1.1
	ZoomOut  = 0.9
)

// Mode is the active gesture
type Mode int

const (
	Idle Mode = iota
	Panning
	Dragging
)

func (m Mode) String() string {
	switch m {
	case Panning:
		return "panning"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// MarshalText encodes the mode by name
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle", "":
		*m = Idle
	case "panning":
		*m = Panning
	case "dragging":
		*m = Dragging
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// ViewState is the pan, zoom and gesture state of the surface
type ViewState struct {
	Scale float64      `json:"scale"`
	Pan   domain.Point `json:"pan"`
	Mode  Mode         `json:"mode"`

	// DragTarget is the device being dragged while Mode is Dragging
	DragTarget string `json:"dragTarget,omitempty"`

	// lastScreen is the previous pointer position while panning
	lastScreen domain.Point
	// grab is the pointer offset from the dragged device's position,
	// in local units
	grab domain.Point
}

// InitialState is the view after loading a diagram
func InitialState() ViewState {
	return ViewState{Scale: 1}
}

// View returns the pan and zoom part of the state
func (s ViewState) View() render.View {
	return render.View{Scale: s.Scale, Pan: s.Pan}
}

// Transform returns the matrix currently applied to the surface
func (s ViewState) Transform() geom.Affine {
	return geom.ViewTransform(s.Scale, s.Pan)
}

// ToLocal maps a screen point into diagram-local coordinates
func (s ViewState) ToLocal(screen domain.Point) domain.Point {
	inv, ok := s.Transform().Invert()
	if !ok {
		return screen
	}
	return inv.Apply(screen)
}

// EventType identifies a pointer or wheel input
type EventType string

const (
	EventWheel        EventType = "wheel"
	EventPointerDown  EventType = "pointerDown"
	EventPointerMove  EventType = "pointerMove"
	EventPointerUp    EventType = "pointerUp"
	EventPointerLeave EventType = "pointerLeave"
)

// TargetKind is what a pointer landed on
type TargetKind string

const (
	// TargetAuto asks the viewer to hit-test the pointer position
	TargetAuto   TargetKind = ""
	TargetCanvas TargetKind = "canvas"
	TargetDevice TargetKind = "device"
	TargetEdit   TargetKind = "edit"
	TargetDelete TargetKind = "delete"
)

// Target is the hit-test result for a pointer position
type Target struct {
	Kind     TargetKind `json:"kind,omitempty"`
	DeviceID string     `json:"deviceId,omitempty"`
}

// Event is one user input
type Event struct {
	Type   EventType    `json:"type"`
	Screen domain.Point `json:"screen"`
	DeltaY float64      `json:"deltaY,omitempty"`
	Target Target       `json:"target,omitempty"`
}

// Action is a side effect the host must carry out after an update
type Action string

const (
	ActionNone   Action = ""
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Effect reports what an update did
type Effect struct {
	Action   Action `json:"action,omitempty"`
	DeviceID string `json:"deviceId,omitempty"`
	// Changed is set when the frame needs redrawing
	Changed bool `json:"changed"`
}

// Clamp bounds a zoom level to [MinScale, MaxScale]
func Clamp(scale float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, scale))
}

// Update is the transition function of the viewer. It returns the next
// state, the device list after the event and the effect to carry out. The
// input slice is never written; a changed device list is a fresh copy.
//
// A pointerDown with an unresolved target is treated as a canvas press.
func Update(s ViewState, devices []domain.Device, ev Event) (ViewState, []domain.Device, Effect) {
	switch ev.Type {
	case EventWheel:
		return wheel(s, devices, ev)
	case EventPointerDown:
		return pointerDown(s, devices, ev)
	case EventPointerMove:
		return pointerMove(s, devices, ev)
	case EventPointerUp, EventPointerLeave:
		return endGesture(s), devices, Effect{Changed: s.Mode != Idle}
	}
	return s, devices, Effect{}
}

func wheel(s ViewState, devices []domain.Device, ev Event) (ViewState, []domain.Device, Effect) {
	if s.Mode != Idle || ev.DeltaY == 0 {
		return s, devices, Effect{}
	}
	factor := ZoomIn
	if ev.DeltaY > 0 {
		factor = ZoomOut
	}
	prev := s.Scale
	s.Scale = Clamp(s.Scale * factor)
	return s, devices, Effect{Changed: s.Scale != prev}
}

func pointerDown(s ViewState, devices []domain.Device, ev Event) (ViewState, []domain.Device, Effect) {
	s = endGesture(s)

	switch ev.Target.Kind {
	case TargetEdit:
		if findDevice(devices, ev.Target.DeviceID) < 0 {
			return s, devices, Effect{}
		}
		return s, devices, Effect{Action: ActionEdit, DeviceID: ev.Target.DeviceID}

	case TargetDelete:
		i := findDevice(devices, ev.Target.DeviceID)
		if i < 0 {
			return s, devices, Effect{}
		}
		out := make([]domain.Device, 0, len(devices)-1)
		out = append(out, devices[:i]...)
		out = append(out, devices[i+1:]...)
		return s, out, Effect{Action: ActionDelete, DeviceID: ev.Target.DeviceID, Changed: true}

	case TargetDevice:
		if i := findDevice(devices, ev.Target.DeviceID); i >= 0 {
			s.Mode = Dragging
			s.DragTarget = devices[i].ID
			s.grab = s.ToLocal(ev.Screen).Sub(devices[i].Position)
			return s, devices, Effect{}
		}
	}

	s.Mode = Panning
	s.lastScreen = ev.Screen
	return s, devices, Effect{}
}

func pointerMove(s ViewState, devices []domain.Device, ev Event) (ViewState, []domain.Device, Effect) {
	switch s.Mode {
	case Panning:
		s.Pan = s.Pan.Add(ev.Screen.Sub(s.lastScreen))
		s.lastScreen = ev.Screen
		return s, devices, Effect{Changed: true}

	case Dragging:
		i := findDevice(devices, s.DragTarget)
		if i < 0 {
			return endGesture(s), devices, Effect{}
		}
		out := make([]domain.Device, len(devices))
		copy(out, devices)
		out[i].Position = s.ToLocal(ev.Screen).Sub(s.grab)
		return s, out, Effect{Changed: true}
	}
	return s, devices, Effect{}
}

func endGesture(s ViewState) ViewState {
	s.Mode = Idle
	s.DragTarget = ""
	s.lastScreen = domain.Point{}
	s.grab = domain.Point{}
	return s
}

// HitTest resolves what lies under a screen point. Devices are tested
// topmost first, in reverse draw order; within one device its affordances
// sit above its body and are only present when editable.
func HitTest(devices []domain.Device, s ViewState, screen domain.Point, editable bool) Target {
	local := s.ToLocal(screen)
	for i := len(devices) - 1; i >= 0; i-- {
		d := &devices[i]
		if editable {
			for _, a := range render.Affordances(d.Position) {
				if a.Contains(local) {
					return Target{Kind: affordanceTarget(a.Action), DeviceID: d.ID}
				}
			}
		}
		if render.Body(d.Position).Contains(local) {
			return Target{Kind: TargetDevice, DeviceID: d.ID}
		}
	}
	return Target{Kind: TargetCanvas}
}

func affordanceTarget(action string) TargetKind {
	if action == render.ActionDelete {
		return TargetDelete
	}
	return TargetEdit
}

func findDevice(devices []domain.Device, id string) int {
	for i := range devices {
		if devices[i].ID == id {
			return i
		}
	}
	return -1
}
