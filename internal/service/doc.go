// Package service owns the single active topology diagram.
//
// DiagramService plays the role of the UI thread: the template catalog, the
// interactive viewer and the exporter all sit behind one mutex, so HTTP
// handlers, the survey file watcher and the CLI can drive the same diagram
// concurrently. Rasterizing an export is the only slow step and runs
// outside the lock; the exporter's busy flag keeps exports from overlapping.
//
// # Event System
//
// Every change publishes an Event on the EventBus: diagram loads, rendered
// frames, view resets, edit requests from the edit affordance, device
// edits, finished exports and saved sessions. The hub forwards them to
// browsers over Server-Sent Events so they re-render.
//
// # Sessions
//
// When a repository.SessionStore is configured, the current survey and its
// device positions can be saved and reopened. Reopening instantiates the
// template again and then applies the saved positions to the devices whose
// IDs still exist.
package service
