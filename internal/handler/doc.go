// Package handler implements the HTTP API of the topology diagram server.
//
// DiagramHandler exposes the single active diagram held by the service:
// loading a survey configuration, feeding pointer and wheel events to the
// viewer, editing devices, rendering the current frame as SVG and exporting
// it as an SVG, PNG or PDF download. Saved sessions are available when the
// server runs with a session store.
//
// # Response Format
//
// Success responses return JSON with 200 or 201; deletes answer 204.
// Errors return JSON with an {error, details} structure. Sentinel errors
// from the service map to status codes: unknown kinds and formats are 400,
// unknown devices and sessions 404, edits without a diagram and
// overlapping exports 409, and session calls without a store 503.
//
// Exporting with nothing mounted is a silent no-op and answers 204.
//
// # Middleware
//
// Chain composes Recover, CORS and Logger around the mux.
package handler
