package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"topodiagram/internal/service"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestEncode(t *testing.T) {
	msg, err := encode(service.Event{Type: service.EventViewReset, Payload: map[string]int{"scale": 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "event: view_reset\ndata: {\"type\":\"view_reset\",\"payload\":{\"scale\":1}}\n\n"
	if string(msg) != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
}

func TestServeHTTP(t *testing.T) {
	h, _ := startHub(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, _ := reader.ReadString('\n')
	if line != ": connected\n" {
		t.Fatalf("expected connected comment, got %q", line)
	}
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	h.Broadcast(service.Event{Type: service.EventDiagramLoaded})

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		if line = strings.TrimSpace(line); line != "" {
			got = append(got, line)
		}
	}
	if got[0] != "event: diagram_loaded" {
		t.Errorf("unexpected event line %q", got[0])
	}
	if got[1] != `data: {"type":"diagram_loaded"}` {
		t.Errorf("unexpected data line %q", got[1])
	}

	cancel()
	waitFor(t, func() bool { return h.ClientCount() == 0 })
}

func TestForward(t *testing.T) {
	h, _ := startHub(t)
	bus := service.NewEventBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Forward(ctx, bus)

	client := &Client{id: "test", events: make(chan []byte, 4)}
	h.register <- client

	// Forward subscribes asynchronously; publish until the hub relays one
	deadline := time.After(2 * time.Second)
	for {
		bus.Publish(service.Event{Type: service.EventExportCompleted})
		select {
		case msg := <-client.events:
			if !strings.HasPrefix(string(msg), "event: export_completed\n") {
				t.Fatalf("unexpected message %q", msg)
			}
			return
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("event was not forwarded")
		}
	}
}

func TestRunClosesClientsOnShutdown(t *testing.T) {
	h, cancel := startHub(t)
	client := &Client{id: "test", events: make(chan []byte, 1)}
	h.register <- client

	cancel()
	select {
	case _, ok := <-client.events:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client channel was not closed")
	}
}
