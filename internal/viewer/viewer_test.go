package viewer

import (
	"errors"
	"fmt"
	"testing"

	"topodiagram/internal/domain"
	"topodiagram/internal/layout"
	"topodiagram/internal/template"
)

func fiberInstance(t *testing.T) *template.Instance {
	t.Helper()
	catalog, err := template.Builtin()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	inst, err := catalog.Build(domain.TopologyConfig{
		Kind:         domain.TopologyFiber,
		CustomerName: "Acme Corp",
		Address:      "1 Main St",
		Quantities:   map[string]int{"routers": 1, "switches": 1, "antennas": 1},
	})
	if err != nil {
		t.Fatalf("failed to build diagram: %v", err)
	}
	return inst
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("n%d", n)
	})
}

func TestViewerLoad(t *testing.T) {
	v := New()
	if v.Mounted() {
		t.Fatal("expected a new viewer to be unmounted")
	}
	if effect := v.Dispatch(wheelEvent(-1)); effect.Changed {
		t.Error("expected events to be ignored before loading")
	}

	inst := fiberInstance(t)
	v.Load(inst)
	v.Dispatch(wheelEvent(-1))
	if v.State().Scale == 1 {
		t.Fatal("expected zoom to apply once loaded")
	}

	v.Load(inst)
	if v.State() != InitialState() {
		t.Errorf("expected view reset on load, got %+v", v.State())
	}

	inst.Graph.Devices[0].Label = "mutated"
	if v.Graph().Devices[0].Label == "mutated" {
		t.Error("expected the viewer to own a copy of the graph")
	}

	chrome := v.Chrome()
	if chrome.Title != "Fiber Topology" || chrome.Customer != "Acme Corp" || chrome.Address != "1 Main St" {
		t.Errorf("unexpected chrome %+v", chrome)
	}
}

func TestViewerDragByHitTest(t *testing.T) {
	v := New()
	v.Load(fiberInstance(t))
	v.Dispatch(wheelEvent(-1))

	target := v.Graph().Device("splitter-0")
	screen := v.State().Transform().Apply(target.Position)

	v.Dispatch(Event{Type: EventPointerDown, Screen: screen})
	if v.State().Mode != Dragging || v.State().DragTarget != "splitter-0" {
		t.Fatalf("expected to drag splitter-0, got %s %q", v.State().Mode, v.State().DragTarget)
	}

	v.Dispatch(Event{Type: EventPointerMove, Screen: screen.Add(domain.Point{X: 0, Y: 55})})
	v.Dispatch(Event{Type: EventPointerUp})

	got := v.Graph().Device("splitter-0").Position
	want := target.Position.Add(domain.Point{Y: 50})
	if !nearPoint(got, want) {
		t.Errorf("expected splitter at %+v, got %+v", want, got)
	}
}

func TestViewerAffordances(t *testing.T) {
	v := New(WithEditable(true))
	v.Load(fiberInstance(t))

	var edited []string
	v.OnEdit(func(d domain.Device) { edited = append(edited, d.ID) })

	olt := v.Graph().Device("olt-0").Position
	edit := v.State().Transform().Apply(olt.Add(domain.Point{X: 27, Y: -30}))
	effect := v.Dispatch(Event{Type: EventPointerDown, Screen: edit})
	if effect.Action != ActionEdit || v.State().Mode != Idle {
		t.Errorf("expected edit without drag, got %+v in %s", effect, v.State().Mode)
	}
	if len(edited) != 1 || edited[0] != "olt-0" {
		t.Errorf("expected edit callback for olt-0, got %v", edited)
	}

	del := v.State().Transform().Apply(olt.Add(domain.Point{X: 45, Y: -30}))
	effect = v.Dispatch(Event{Type: EventPointerDown, Screen: del})
	if effect.Action != ActionDelete {
		t.Fatalf("expected delete, got %+v", effect)
	}
	if v.Graph().Device("olt-0") != nil {
		t.Error("expected olt-0 to be removed")
	}

	scene := v.Scene()
	if len(scene.Paths) != 1 {
		t.Errorf("expected the dangling connection to be skipped, got %d paths", len(scene.Paths))
	}
	if len(v.Graph().Connections) != 2 {
		t.Error("expected connections to be kept")
	}
}

func TestViewerReadOnlyIgnoresAffordances(t *testing.T) {
	v := New()
	v.Load(fiberInstance(t))

	olt := v.Graph().Device("olt-0").Position
	effect := v.Dispatch(Event{
		Type:   EventPointerDown,
		Screen: olt,
		Target: Target{Kind: TargetDelete, DeviceID: "olt-0"},
	})
	if effect.Action != ActionNone {
		t.Errorf("expected no action in read-only mode, got %+v", effect)
	}
	if v.Graph().Device("olt-0") == nil {
		t.Error("expected device to survive")
	}
}

func TestViewerResetView(t *testing.T) {
	v := New()
	v.Load(fiberInstance(t))

	v.Dispatch(wheelEvent(-1))
	v.Dispatch(down(0, 0, Target{Kind: TargetCanvas}))
	v.Dispatch(move(40, 40))
	v.Dispatch(Event{Type: EventPointerUp})
	before := v.Positions()

	v.ResetView()
	if s := v.State(); s.Scale != 1 || s.Pan != (domain.Point{}) {
		t.Errorf("expected reset view, got %+v", s)
	}
	for id, p := range v.Positions() {
		if before[id] != p {
			t.Errorf("expected %s to stay at %+v, got %+v", id, before[id], p)
		}
	}
}

func TestViewerEdits(t *testing.T) {
	t.Run("quick-add cascades from the default spot", func(t *testing.T) {
		v := New(sequentialIDs())
		v.Load(fiberInstance(t))

		first, err := v.AddDevice(domain.DeviceTypeClient, "Laptop")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, _ := v.AddDevice(domain.DeviceTypeClient, "")

		if first.ID != "client-n1" || first.Position != layout.QuickAddOrigin {
			t.Errorf("unexpected first device %+v", first)
		}
		if second.Label != "client" || second.Position != layout.QuickAddPosition(1) {
			t.Errorf("unexpected second device %+v", second)
		}
		if len(v.Graph().Devices) != 5 {
			t.Errorf("expected 5 devices, got %d", len(v.Graph().Devices))
		}
	})

	t.Run("rename and remove", func(t *testing.T) {
		v := New()
		v.Load(fiberInstance(t))

		if err := v.RenameDevice("onu-0", "Customer ONU"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Graph().Device("onu-0").Label != "Customer ONU" {
			t.Error("expected label to change")
		}

		if err := v.RemoveDevice("ghost"); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("expected ErrDeviceNotFound, got %v", err)
		}
		if err := v.RemoveDevice("onu-0"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Graph().Device("onu-0") != nil {
			t.Error("expected onu-0 to be gone")
		}
	})

	t.Run("edits need a diagram", func(t *testing.T) {
		v := New()
		if _, err := v.AddDevice(domain.DeviceTypeRouter, "R"); !errors.Is(err, ErrNoDiagram) {
			t.Errorf("expected ErrNoDiagram, got %v", err)
		}
		if err := v.RenameDevice("x", "y"); !errors.Is(err, ErrNoDiagram) {
			t.Errorf("expected ErrNoDiagram, got %v", err)
		}
	})

	t.Run("apply positions skips unknown devices", func(t *testing.T) {
		v := New()
		v.Load(fiberInstance(t))
		moved := v.ApplyPositions(map[string]domain.Point{
			"olt-0": {X: 1, Y: 2},
			"gone":  {X: 3, Y: 4},
		})
		if moved != 1 || v.Graph().Device("olt-0").Position != (domain.Point{X: 1, Y: 2}) {
			t.Errorf("expected olt-0 to move, moved=%d", moved)
		}
	})
}

func TestViewerSubscribe(t *testing.T) {
	v := New()
	var frames []Frame
	v.Subscribe(func(f Frame) { frames = append(frames, f) })

	v.Load(fiberInstance(t))
	v.Dispatch(wheelEvent(-1))
	v.Dispatch(wheelEvent(0))
	v.Dispatch(down(500, 500, Target{Kind: TargetCanvas}))
	v.Dispatch(move(501, 500))

	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Seq <= frames[i-1].Seq {
			t.Errorf("expected increasing sequence numbers, got %d then %d", frames[i-1].Seq, frames[i].Seq)
		}
	}
	if len(frames[0].Scene.Nodes) != 3 {
		t.Errorf("expected 3 nodes in the first frame, got %d", len(frames[0].Scene.Nodes))
	}
	if frames[2].Scene.View.Pan != (domain.Point{X: 1}) {
		t.Errorf("expected the last frame to show the pan, got %+v", frames[2].Scene.View.Pan)
	}
}
