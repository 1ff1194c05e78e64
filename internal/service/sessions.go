package service

import (
	"context"
	"fmt"
	"strings"

	"topodiagram/internal/domain"
	"topodiagram/internal/viewer"
)

// SaveSession stores the active survey and its device positions. Saving
// again after a save or an open updates the same session unless asNew is
// set. An empty name keeps the current one, falling back to the customer
// name.
func (s *DiagramService) SaveSession(ctx context.Context, name string, asNew bool) (*domain.Session, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}

	s.mu.Lock()
	if !s.viewer.Mounted() {
		s.mu.Unlock()
		return nil, viewer.ErrNoDiagram
	}
	id := s.sessionID
	if id == "" || asNew {
		id = s.newSessionID()
	}
	cfg := s.viewer.Config()
	name = strings.TrimSpace(name)
	if name == "" && !asNew {
		name = s.sessionName
	}
	if name == "" {
		name = cfg.CustomerName
	}
	session := &domain.Session{
		ID:        id,
		Name:      name,
		Config:    cfg,
		Positions: s.viewer.Positions(),
	}
	s.mu.Unlock()

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	s.sessionID, s.sessionName = session.ID, session.Name
	s.mu.Unlock()

	s.log.WithField("session_id", session.ID).Info("Session saved")
	s.eventBus.Publish(Event{Type: EventSessionSaved, Payload: session.Summary()})
	return session, nil
}

// OpenSession instantiates a saved survey and applies its saved positions
// to the devices that still exist
func (s *DiagramService) OpenSession(ctx context.Context, id string) (Status, error) {
	if s.store == nil {
		return Status{}, ErrNoStore
	}

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return Status{}, err
	}
	inst, err := s.catalog.Build(session.Config)
	if err != nil {
		return Status{}, fmt.Errorf("failed to rebuild session %s: %w", id, err)
	}

	s.mu.Lock()
	s.viewer.Load(inst)
	moved := s.viewer.ApplyPositions(session.Positions)
	s.sessionID, s.sessionName = session.ID, session.Name
	status := s.statusLocked()
	s.mu.Unlock()

	s.log.WithField("session_id", id).
		WithField("restored", moved).
		Info("Session opened")
	s.eventBus.Publish(Event{Type: EventDiagramLoaded, Payload: status})
	return status, nil
}

// ListSessions lists saved sessions, most recent first
func (s *DiagramService) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.ListSessions(ctx)
}

// DeleteSession removes a saved session. The mounted diagram stays; it is
// simply no longer tied to a session.
func (s *DiagramService) DeleteSession(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.sessionID == id {
		s.sessionID, s.sessionName = "", ""
	}
	s.mu.Unlock()

	s.eventBus.Publish(Event{
		Type:    EventSessionDeleted,
		Payload: map[string]string{"session_id": id},
	})
	return nil
}
